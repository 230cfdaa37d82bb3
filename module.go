package main

import (
	"os"
	"path/filepath"

	"github.com/ztrue/tracerr"
	"gopkg.in/yaml.v2"
)

const moduleFile = "acctsyn.yaml"

// acctsynModule is the project configuration read from acctsyn.yaml.
type acctsynModule struct {
	Package string   `yaml:"package"`
	Sources []string `yaml:"sources,omitempty"`
	Output  string   `yaml:"output,omitempty"`
}

func (m *acctsynModule) setDefaults() {
	if len(m.Sources) == 0 {
		m.Sources = []string{"."}
	}
	if m.Output == "" {
		m.Output = m.Package + ".json"
	}
}

func loadModule(path string) (acctsynModule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return acctsynModule{}, tracerr.Wrap(err)
	}

	var doc acctsynModule
	if err := yaml.UnmarshalStrict(data, &doc); err != nil {
		return acctsynModule{}, tracerr.Errorf("error reading %s: %v", path, err)
	}
	if doc.Package == "" {
		return acctsynModule{}, tracerr.Errorf("error reading %s: package is required", path)
	}

	// Sources and output are relative to the module file.
	base := filepath.Dir(path)
	doc.setDefaults()
	for i, src := range doc.Sources {
		if !filepath.IsAbs(src) {
			doc.Sources[i] = filepath.Join(base, src)
		}
	}
	if !filepath.IsAbs(doc.Output) {
		doc.Output = filepath.Join(base, doc.Output)
	}

	return doc, nil
}

func writeModule(path string, m acctsynModule) error {
	out, err := yaml.Marshal(m)
	if err != nil {
		return tracerr.Wrap(err)
	}
	return tracerr.Wrap(os.WriteFile(path, out, 0644))
}
