package loader

import (
	"fmt"
	"io/ioutil"

	"github.com/ridoystarlord/packpipe/model"
	"gopkg.in/yaml.v3"
)

type yamlFile struct {
	Name        string      `yaml:"name"`
	Version     string      `yaml:"version"`
	Description string      `yaml:"description"`
	Author      string      `yaml:"author"`
	Tables      []yamlTable `yaml:"tables"`
}

type yamlTable struct {
	Name        string   `yaml:"name"`
	Master      string   `yaml:"master"`
	Description string   `yaml:"description"`
	Help        string   `yaml:"help"`
	Columns     []string `yaml:"columns"`
}

func LoadBundleFromYAML(filename string) (*model.Bundle, error) {
	data, err := ioutil.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("reading bundle file: %w", err)
	}

	var yf yamlFile
	if err := yaml.Unmarshal(data, &yf); err != nil {
		return nil, fmt.Errorf("unmarshalling YAML: %w", err)
	}

	bundle := &model.Bundle{
		Name:        yf.Name,
		Version:     yf.Version,
		Description: yf.Description,
		Author:      yf.Author,
	}
	if bundle.Version == "" {
		bundle.Version = "1.0.0"
	}

	for _, t := range yf.Tables {
		bundle.Tables = append(bundle.Tables, model.Table{
			Name:        t.Name,
			Master:      t.Master,
			Description: t.Description,
			Help:        t.Help,
			Columns:     t.Columns,
		})
	}

	return bundle, nil
}
