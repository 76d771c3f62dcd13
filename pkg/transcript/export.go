package transcript

import (
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"
)

// Export is the serialized form of a transcript
type Export struct {
	Resource   string    `yaml:"resource,omitempty"`
	ExportedAt time.Time `yaml:"exported_at"`
	Turns      []Turn    `yaml:"turns"`
}

// WriteYAML writes the transcript as YAML, labelled with the resource name
func (t *Transcript) WriteYAML(w io.Writer, resourceName string) error {
	doc := Export{
		Resource:   resourceName,
		ExportedAt: time.Now().UTC(),
		Turns:      t.Turns(),
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return fmt.Errorf("failed to encode transcript: %w", err)
	}
	return enc.Close()
}
