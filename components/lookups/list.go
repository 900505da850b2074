package lookups

import (
	"bufio"
	"embed"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
)

// Resource names served by default.
const (
	ResourcePortfolios   = "portfolios"
	ResourceSecurities   = "securities"
	ResourceRequirements = "valuerequirementnames"
)

//go:embed data/*.txt
var dataFS embed.FS

// Option is one selectable value.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

var (
	defaultOnce sync.Once
	defaultData map[string][]Option
	defaultErr  error
)

// BuiltinOptions returns a copy of the embedded list for resource.
func BuiltinOptions(resource string) ([]Option, bool, error) {
	defaultOnce.Do(func() {
		defaultData = make(map[string][]Option)
		for _, name := range []string{ResourcePortfolios, ResourceSecurities, ResourceRequirements} {
			f, err := dataFS.Open("data/" + name + ".txt")
			if err != nil {
				defaultErr = err
				return
			}
			options, err := LoadOptions(f)
			_ = f.Close()
			if err != nil {
				defaultErr = fmt.Errorf("lookups: load %s: %w", name, err)
				return
			}
			defaultData[name] = options
		}
	})
	if defaultErr != nil {
		return nil, false, defaultErr
	}
	options, ok := defaultData[resource]
	return append([]Option(nil), options...), ok, nil
}

// LoadOptions reads one option per line, "value|label" or a bare value used
// as its own label. Blank lines and lines starting with '#' are skipped;
// duplicate values keep their first label. The result is sorted by label.
func LoadOptions(r io.Reader) ([]Option, error) {
	if r == nil {
		return nil, fmt.Errorf("lookups: missing reader")
	}

	scanner := bufio.NewScanner(r)
	options := make([]Option, 0, 64)
	seen := map[string]struct{}{}
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		value, label, found := strings.Cut(line, "|")
		value = strings.TrimSpace(value)
		label = strings.TrimSpace(label)
		if !found || label == "" {
			label = value
		}
		if _, ok := seen[value]; ok || value == "" {
			continue
		}
		seen[value] = struct{}{}
		options = append(options, Option{Value: value, Label: label})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(options, func(i, j int) bool { return options[i].Label < options[j].Label })
	return options, nil
}
