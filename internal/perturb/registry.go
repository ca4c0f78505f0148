package perturb

import (
	"sort"

	"gopkg.in/yaml.v3"
)

// Params is the raw configuration blob for one operator, as parsed from a
// test-config file: keyword arguments keyed by parameter name.
type Params map[string]any

// Factory builds a configured operator from a probability and a raw
// parameter blob.
type Factory func(prob float64, params Params) (Operator, error)

// registry is the static dispatch table mapping operator aliases to their
// factories. It is populated here, at process startup, and never mutated
// afterwards; the composition operator and the CLI both resolve operators
// through it.
var registry = map[string]Factory{
	"uppercase": func(prob float64, _ Params) (Operator, error) {
		return NewUpperCase(prob)
	},
	"lowercase": func(prob float64, _ Params) (Operator, error) {
		return NewLowerCase(prob)
	},
	"titlecase": func(prob float64, _ Params) (Operator, error) {
		return NewTitleCase(prob)
	},
	"add_punctuation": func(prob float64, params Params) (Operator, error) {
		var p struct {
			Whitelist []string `yaml:"whitelist"`
			Count     int      `yaml:"count"`
		}
		if err := decodeParams(params, &p); err != nil {
			return nil, err
		}
		return NewAddPunctuation(prob, p.Whitelist, p.Count)
	},
	"strip_punctuation": func(prob float64, params Params) (Operator, error) {
		var p struct {
			Whitelist []string `yaml:"whitelist"`
		}
		if err := decodeParams(params, &p); err != nil {
			return nil, err
		}
		return NewStripPunctuation(prob, p.Whitelist)
	},
	"strip_punctuation_all": func(prob float64, params Params) (Operator, error) {
		var p struct {
			Whitelist []string `yaml:"whitelist"`
		}
		if err := decodeParams(params, &p); err != nil {
			return nil, err
		}
		return NewStripAllPunctuation(prob, p.Whitelist)
	},
	"add_typo": func(prob float64, params Params) (Operator, error) {
		var p struct {
			Count int `yaml:"count"`
		}
		if err := decodeParams(params, &p); err != nil {
			return nil, err
		}
		return NewAddTypo(prob, p.Count)
	},
	"swap_entities": func(prob float64, params Params) (Operator, error) {
		var p struct {
			Labels      [][]string          `yaml:"labels"`
			Terminology map[string][]string `yaml:"terminology"`
			Count       int                 `yaml:"count"`
		}
		if err := decodeParams(params, &p); err != nil {
			return nil, err
		}
		return NewSwapEntities(prob, p.Labels, p.Terminology, p.Count)
	},
	"american_to_british": func(prob float64, params Params) (Operator, error) {
		return buildAccent("american_to_british", prob, params)
	},
	"british_to_american": func(prob float64, params Params) (Operator, error) {
		return buildAccent("british_to_american", prob, params)
	},
	"add_context": func(prob float64, params Params) (Operator, error) {
		var p struct {
			StartingContext []string `yaml:"starting_context"`
			EndingContext   []string `yaml:"ending_context"`
			Strategy        string   `yaml:"strategy"`
			Count           int      `yaml:"count"`
		}
		if err := decodeParams(params, &p); err != nil {
			return nil, err
		}
		return NewAddContext(prob, p.StartingContext, p.EndingContext, p.Strategy, p.Count)
	},
	"add_contraction": func(prob float64, params Params) (Operator, error) {
		var p struct {
			Contractions map[string]string `yaml:"contractions"`
		}
		if err := decodeParams(params, &p); err != nil {
			return nil, err
		}
		return NewAddContraction(prob, p.Contractions)
	},
	"dyslexia_word_swap": func(prob float64, params Params) (Operator, error) {
		var p struct {
			WordMap map[string]string `yaml:"word_map"`
		}
		if err := decodeParams(params, &p); err != nil {
			return nil, err
		}
		return NewDyslexiaWordSwap(prob, p.WordMap)
	},
	"number_to_word": func(prob float64, _ Params) (Operator, error) {
		return NewNumberToWord(prob)
	},
	"add_ocr_typo": func(prob float64, params Params) (Operator, error) {
		var p struct {
			Count int `yaml:"count"`
		}
		if err := decodeParams(params, &p); err != nil {
			return nil, err
		}
		return NewAddOcrTypo(prob, p.Count)
	},
	"add_abbreviation": func(prob float64, params Params) (Operator, error) {
		var p struct {
			Abbreviations map[string][]string `yaml:"abbreviations"`
		}
		if err := decodeParams(params, &p); err != nil {
			return nil, err
		}
		return NewAbbreviationInsertion(prob, p.Abbreviations)
	},
	"add_speech_to_text_typo": func(prob float64, params Params) (Operator, error) {
		var p struct {
			Count int `yaml:"count"`
		}
		if err := decodeParams(params, &p); err != nil {
			return nil, err
		}
		return NewAddSpeechToTextTypo(prob, p.Count)
	},
	"add_slangs": func(prob float64, _ Params) (Operator, error) {
		return NewAddSlangifyTypo(prob)
	},
}

// multiple_perturbations registers through init rather than the map
// literal: its constructor validates chain aliases against the registry,
// so a literal entry would reference a function that reads the map being
// initialized.
func init() {
	registry["multiple_perturbations"] = func(prob float64, params Params) (Operator, error) {
		var p struct {
			Perturbations []string `yaml:"perturbations"`
			Config        map[string]struct {
				Parameters Params `yaml:"parameters"`
			} `yaml:"config"`
		}
		if err := decodeParams(params, &p); err != nil {
			return nil, err
		}
		config := make(map[string]Params, len(p.Config))
		for alias, step := range p.Config {
			config[alias] = step.Parameters
		}
		return NewMultiplePerturbations(prob, p.Perturbations, config)
	}
}

func buildAccent(direction string, prob float64, params Params) (Operator, error) {
	var p struct {
		AccentMap map[string]string `yaml:"accent_map"`
	}
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	return NewConvertAccent(direction, prob, p.AccentMap)
}

// Build resolves alias through the registry and constructs the configured
// operator. Unknown aliases are configuration errors.
func Build(alias string, prob float64, params Params) (Operator, error) {
	factory, ok := registry[alias]
	if !ok {
		return nil, configErrorf("unknown perturbation %q; known perturbations: %v", alias, Aliases())
	}
	return factory(prob, params)
}

// Aliases returns the registered operator names, sorted.
func Aliases() []string {
	names := make([]string, 0, len(registry))
	for alias := range registry {
		names = append(names, alias)
	}
	sort.Strings(names)
	return names
}

// decodeParams maps a raw parameter blob onto a typed parameter struct via
// a YAML round trip, so config-file blobs and programmatic maps decode
// identically.
func decodeParams(params Params, out any) error {
	if len(params) == 0 {
		return nil
	}
	data, err := yaml.Marshal(params)
	if err != nil {
		return configErrorf("invalid operator parameters: %v", err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return configErrorf("invalid operator parameters: %v", err)
	}
	return nil
}
