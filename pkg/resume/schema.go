package resume

import (
	"github.com/xeipuuv/gojsonschema"
)

// extractionSchema documents the shape requested from the model. It is
// checked in advisory mode only: violations are reported, never enforced.
const extractionSchema = `{
  "type": "object",
  "properties": {
    "name": {"type": "string"},
    "profile_email": {"type": "string"},
    "phone": {"type": "string"},
    "title": {"type": "string"},
    "location": {"type": "string"},
    "bio": {"type": "string"},
    "skills": {"type": "array", "items": {"type": "string"}},
    "workExperience": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "position": {"type": "string"},
          "company": {"type": "string"},
          "location": {"type": "string"},
          "startDate": {"type": ["string", "null"]},
          "endDate": {"type": ["string", "null"]},
          "isCurrentPosition": {"type": "boolean"},
          "description": {"type": "string"}
        }
      }
    },
    "education": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "institution": {"type": "string"},
          "degree": {"type": "string"},
          "fieldOfStudy": {"type": "string"},
          "startYear": {"type": ["integer", "string", "null"]},
          "endYear": {"type": ["integer", "string", "null"]},
          "description": {"type": "string"}
        }
      }
    }
  }
}`

var compiledSchema = mustCompileSchema()

func mustCompileSchema() *gojsonschema.Schema {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(extractionSchema))
	if err != nil {
		panic("resume: invalid extraction schema: " + err.Error())
	}
	return s
}

// schemaWarnings lists the places where e departs from the documented shape.
func schemaWarnings(e Extraction) []string {
	res, err := compiledSchema.Validate(gojsonschema.NewGoLoader(map[string]any(e)))
	if err != nil {
		return []string{err.Error()}
	}
	if res.Valid() {
		return nil
	}
	out := make([]string, 0, len(res.Errors()))
	for _, re := range res.Errors() {
		out = append(out, re.String())
	}
	return out
}
