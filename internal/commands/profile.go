package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/alecthomas/kong"
	"gopkg.in/yaml.v3"
)

// ProfilePaths are the YAML files consulted for flag defaults, in order
var ProfilePaths = []string{
	"./combinations.yaml",
	"~/.config/bank-combination-finder/profile.yaml",
}

// YAMLProfile is a kong configuration loader for YAML files.
//
// Keys are flag names, with either dashes or underscores:
//
//	tolerance: 0.05
//	max-size: 4
//	time_budget: 30s
//
// Values given on the command line always win over the profile.
func YAMLProfile(r io.Reader) (kong.Resolver, error) {
	values := map[string]interface{}{}
	if err := yaml.NewDecoder(r).Decode(&values); err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to decode profile: %w", err)
	}

	normalized := make(map[string]string, len(values))
	for k, v := range values {
		if _, nested := v.(map[string]interface{}); nested {
			continue
		}
		normalized[strings.ReplaceAll(k, "_", "-")] = fmt.Sprint(v)
	}

	return kong.ResolverFunc(func(context *kong.Context, parent *kong.Path, flag *kong.Flag) (interface{}, error) {
		if v, ok := normalized[flag.Name]; ok {
			return v, nil
		}
		return nil, nil
	}), nil
}
