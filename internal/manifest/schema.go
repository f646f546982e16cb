package manifest

import (
	"fmt"
	"strings"
)

// Schema describes a manifest header layout.
type Schema struct {
	Version          string
	IdentifierColumn string
	PathColumn       string
	Required         []string
}

var (
	// SchemaV2 is the layout produced by the current export request flow.
	SchemaV2 = Schema{
		Version:          "v2",
		IdentifierColumn: "upload_id",
		PathColumn:       "path_in_zip",
		Required:         []string{"upload_id", "path_in_zip"},
	}
	// SchemaV1 is the legacy layout where each row carried every reporting column.
	SchemaV1 = Schema{
		Version:          "v1",
		IdentifierColumn: "upload_id",
		PathColumn:       "directory_location",
		Required: []string{
			"upload_id",
			"filename_in_zip",
			"directory_location",
			"agency_name",
			"ec_code",
			"reporting_period_name",
			"validity",
		},
	}
)

// LookupSchema returns the schema registered for version.
func LookupSchema(version string) (Schema, error) {
	switch strings.ToLower(strings.TrimSpace(version)) {
	case "", SchemaV2.Version:
		return SchemaV2, nil
	case SchemaV1.Version:
		return SchemaV1, nil
	default:
		return Schema{}, fmt.Errorf("unknown manifest schema %q", version)
	}
}

// SchemaError reports header columns required by a schema but absent from
// the manifest.
type SchemaError struct {
	Version string
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("manifest header does not match schema %s: missing %s", e.Version, strings.Join(e.Missing, ", "))
}

func (s Schema) missingColumns(header []string) []string {
	present := make(map[string]struct{}, len(header))
	for _, name := range header {
		present[name] = struct{}{}
	}
	var missing []string
	for _, name := range s.Required {
		if _, ok := present[name]; !ok {
			missing = append(missing, name)
		}
	}
	return missing
}
