package hospitals

// Specializations lists the accepted hospital tags. OPHTHALMOLOGY and
// OPTHALMOLOGY both occur in the source data and are distinct tags.
var Specializations = []string{
	"GENERAL",
	"MULTISPECIALITY",
	"ORTHOPEDIC",
	"SKIN_AND_HAIR",
	"PEDIATRICS",
	"OPHTHALMOLOGY",
	"DENTAL",
	"AYURVED",
	"ENDOSCOPY",
	"ALLOPATHY",
	"OPTHALMOLOGY",
}

var validSpecializations = func() map[string]bool {
	m := make(map[string]bool, len(Specializations))
	for _, s := range Specializations {
		m[s] = true
	}
	return m
}()

// IsValidSpecialization reports whether tag is one of Specializations.
// Matching is exact and case-sensitive.
func IsValidSpecialization(tag string) bool {
	return validSpecializations[tag]
}
