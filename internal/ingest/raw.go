package ingest

// RawRecord is one untrusted record from the generation provider. Every field
// is optional; a field is only set when the JSON value had the expected type.
type RawRecord struct {
	ID               *string
	Title            *string
	OrganizationName *string
	Description      *string
	Location         *string
	Dates            *string
	SearchQuery      *string
	Category         *string
	TimeCommitment   *string
	AgeRequirement   *string
	RemoteOrOnline   *bool
	SkillsRequired   []string
}

func decodeRawRecord(obj map[string]any) RawRecord {
	return RawRecord{
		ID:               stringField(obj, "id"),
		Title:            stringField(obj, "title"),
		OrganizationName: stringField(obj, "organizationName"),
		Description:      stringField(obj, "description"),
		Location:         stringField(obj, "location"),
		Dates:            stringField(obj, "dates"),
		SearchQuery:      stringField(obj, "searchQuery"),
		Category:         stringField(obj, "category"),
		TimeCommitment:   stringField(obj, "timeCommitment"),
		AgeRequirement:   stringField(obj, "ageRequirement"),
		RemoteOrOnline:   boolField(obj, "remoteOrOnline"),
		SkillsRequired:   stringListField(obj, "skillsRequired"),
	}
}

func stringField(obj map[string]any, key string) *string {
	if s, ok := obj[key].(string); ok {
		return &s
	}
	return nil
}

func boolField(obj map[string]any, key string) *bool {
	if b, ok := obj[key].(bool); ok {
		return &b
	}
	return nil
}

// stringListField keeps the string elements of an array and ignores the rest.
func stringListField(obj map[string]any, key string) []string {
	arr, ok := obj[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(arr))
	for _, v := range arr {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// str dereferences an optional field, treating blank values as absent.
func str(p *string) (string, bool) {
	if p == nil {
		return "", false
	}
	s := normalizeSpace(sanitizeUTF8(*p))
	return s, s != ""
}
