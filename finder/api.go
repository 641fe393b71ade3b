package finder

type NearbyRequest struct {
	Source         string   `json:"source" binding:"required"`
	MaxDistanceKm  *float64 `json:"maxDistanceKm" binding:"required,min=0"`
	Specialization string   `json:"specialization" binding:"required"`
}

func (r NearbyRequest) Query() Query {
	q := Query{Source: r.Source, Specialization: r.Specialization}
	if r.MaxDistanceKm != nil {
		q.MaxDistanceKm = *r.MaxDistanceKm
	}
	return q
}

type MatchView struct {
	Name           string  `json:"name"`
	Specialization string  `json:"specialization"`
	Latitude       float64 `json:"latitude"`
	Longitude      float64 `json:"longitude"`
	DistanceKm     float64 `json:"distanceKm"`
}

type DetailView struct {
	MatchView
	Rating       float64 `json:"rating"`
	NumReviews   int     `json:"numReviews"`
	WorkingHours string  `json:"workingHours"`
	AverageFees  int     `json:"averageFees"`
	Address      string  `json:"address"`
}

// Summary response used by the web client
type NearbyResponse struct {
	RequestID      string      `json:"requestId"`
	Source         string      `json:"source"`
	MaxDistanceKm  float64     `json:"maxDistanceKm"`
	Specialization string      `json:"specialization"`
	Matches        []MatchView `json:"matches"`
	Count          int         `json:"count"`
	NoMatches      bool        `json:"noMatches"`
	NearestKm      float64     `json:"nearestKm"`
	FarthestKm     float64     `json:"farthestKm"`
	Message        string      `json:"message,omitempty"`
}

type DetailsResponse struct {
	RequestID      string       `json:"requestId"`
	Source         string       `json:"source"`
	MaxDistanceKm  float64      `json:"maxDistanceKm"`
	Specialization string       `json:"specialization"`
	Hospitals      []DetailView `json:"hospitals"`
	Count          int          `json:"count"`
	NoMatches      bool         `json:"noMatches"`
	Message        string       `json:"message,omitempty"`
}

func viewOf(m Match) MatchView {
	return MatchView{
		Name:           m.Location.Name,
		Specialization: m.Location.Specialization,
		Latitude:       m.Location.Latitude,
		Longitude:      m.Location.Longitude,
		DistanceKm:     m.DistanceKm,
	}
}

// PrepareResponse keeps matches in graph order and fills in the totals.
func PrepareResponse(q Query, matches []Match) NearbyResponse {
	resp := NearbyResponse{
		Source:         q.Source,
		MaxDistanceKm:  q.MaxDistanceKm,
		Specialization: q.Specialization,
		Matches:        make([]MatchView, 0, len(matches)),
	}

	for i, m := range matches {
		resp.Matches = append(resp.Matches, viewOf(m))
		if i == 0 || m.DistanceKm < resp.NearestKm {
			resp.NearestKm = m.DistanceKm
		}
		if m.DistanceKm > resp.FarthestKm {
			resp.FarthestKm = m.DistanceKm
		}
	}

	resp.Count = len(resp.Matches)
	resp.NoMatches = resp.Count == 0
	return resp
}

func PrepareDetailsResponse(q Query, details []Detail) DetailsResponse {
	resp := DetailsResponse{
		Source:         q.Source,
		MaxDistanceKm:  q.MaxDistanceKm,
		Specialization: q.Specialization,
		Hospitals:      make([]DetailView, 0, len(details)),
	}

	for _, d := range details {
		resp.Hospitals = append(resp.Hospitals, DetailView{
			MatchView:    viewOf(d.Match),
			Rating:       d.Record.Rating,
			NumReviews:   d.Record.NumReviews,
			WorkingHours: d.Record.WorkingHours,
			AverageFees:  d.Record.AverageFees,
			Address:      d.Record.Address,
		})
	}

	resp.Count = len(resp.Hospitals)
	resp.NoMatches = resp.Count == 0
	return resp
}
