package skip

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/celestiaorg/pitests/internal/version"
)

// Feature names a versioned precondition, e.g. "web-api-current-patch".
type Feature string

// Product names a PI System component that reports a version.
type Product string

// Products known to the threshold table
const (
	ProductAFServer        Product = "af-server"
	ProductDataArchive     Product = "data-archive"
	ProductAnalysis        Product = "analysis"
	ProductNotifications   Product = "notifications"
	ProductWebAPI          Product = "web-api"
	ProductVision          Product = "vision"
	ProductDataLink        Product = "data-link"
	ProductManualLoggerWeb Product = "manual-logger-web"
	ProductRTQP            Product = "rtqp"
	ProductSQLClientOLEDB  Product = "sql-client-oledb"
	ProductSQLClientODBC   Product = "sql-client-odbc"
)

// Features defined in the embedded threshold table
const (
	FeatureAFServerCurrentPatch        Feature = "af-server-current-patch"
	FeatureAFPatch2107                 Feature = "af-patch-2107"
	FeatureAFPatch2109                 Feature = "af-patch-2109"
	FeatureAnalysisCurrentPatch        Feature = "analysis-current-patch"
	FeatureNotificationsCurrentPatch   Feature = "notifications-current-patch"
	FeatureDataArchiveCurrentPatch     Feature = "data-archive-current-patch"
	FeatureDataLinkCurrentPatch        Feature = "data-link-current-patch"
	FeatureRTQPCurrentPatch            Feature = "rtqp-current-patch"
	FeatureSQLClientOLEDBCurrentPatch  Feature = "sql-client-oledb-current-patch"
	FeatureSQLClientODBCCurrentPatch   Feature = "sql-client-odbc-current-patch"
	FeatureWebAPICurrentPatch          Feature = "web-api-current-patch"
	FeatureVisionCurrentPatch          Feature = "vision-current-patch"
	FeatureManualLoggerWebCurrentPatch Feature = "manual-logger-web-current-patch"
)

// Threshold is the minimum version a feature requires.
type Threshold struct {
	Feature Feature `yaml:"feature"`
	Product Product `yaml:"product"`
	Minimum string  `yaml:"minimum"`
	// Label is the release name shown in skip reasons.
	Label string `yaml:"label"`
	// Setting gates the feature: when it is blank, or false for a bool gate, the product
	// is not deployed.
	Setting string `yaml:"setting"`
	// Kind is the value kind of the gating setting, "string" (the default) or "bool".
	Kind string `yaml:"kind"`
	// Current marks the latest release of the product.
	Current bool `yaml:"current"`
	// Critical marks a patch whose absence risks data loss.
	Critical bool `yaml:"critical"`
}

// Setting kinds accepted by the threshold table
const (
	SettingKindString = "string"
	SettingKindBool   = "bool"
)

// SettingKind returns the kind the gating setting is checked with
func (th Threshold) SettingKind() (Kind, error) {
	switch th.Kind {
	case "", SettingKindString:
		return KindString, nil
	case SettingKindBool:
		return KindBool, nil
	default:
		return KindString, fmt.Errorf("feature %q: unknown setting kind %q", th.Feature, th.Kind)
	}
}

// Thresholds is the feature threshold table.
type Thresholds []Threshold

//go:embed thresholds.yaml
var defaultThresholdsYAML []byte

var (
	defaultThresholdsOnce sync.Once
	defaultThresholds     Thresholds
)

// LoadThresholds decodes and validates a threshold table.
func LoadThresholds(r io.Reader) (Thresholds, error) {
	var doc struct {
		Features Thresholds `yaml:"features"`
	}
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode thresholds: %w", err)
	}
	if err := doc.Features.Validate(); err != nil {
		return nil, err
	}
	return doc.Features, nil
}

// DefaultThresholds returns the embedded threshold table.
func DefaultThresholds() Thresholds {
	defaultThresholdsOnce.Do(func() {
		t, err := LoadThresholds(bytes.NewReader(defaultThresholdsYAML))
		if err != nil {
			panic(fmt.Sprintf("embedded threshold table is invalid: %v", err))
		}
		defaultThresholds = t
	})
	return defaultThresholds
}

// Lookup finds the threshold of a feature.
func (t Thresholds) Lookup(f Feature) (Threshold, bool) {
	for _, th := range t {
		if th.Feature == f {
			return th, true
		}
	}
	return Threshold{}, false
}

// Features lists the features of the table in sorted order.
func (t Thresholds) Features() []Feature {
	out := make([]Feature, 0, len(t))
	for _, th := range t {
		out = append(out, th.Feature)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Validate checks the table for internal consistency: unique features, parsable minimums,
// complete entries, known setting kinds, at most one current entry per product, and no threshold of a product
// above its current release.
func (t Thresholds) Validate() error {
	seen := make(map[Feature]bool, len(t))
	current := make(map[Product]Threshold)

	for _, th := range t {
		if th.Feature == "" {
			return fmt.Errorf("threshold without a feature name")
		}
		if seen[th.Feature] {
			return fmt.Errorf("feature %q is defined more than once", th.Feature)
		}
		seen[th.Feature] = true

		if th.Product == "" || th.Label == "" || th.Setting == "" {
			return fmt.Errorf("feature %q: product, label and setting are required", th.Feature)
		}
		if _, err := version.Parse(th.Minimum); err != nil {
			return fmt.Errorf("feature %q: %w", th.Feature, err)
		}
		if _, err := th.SettingKind(); err != nil {
			return err
		}
		if th.Current {
			if prev, ok := current[th.Product]; ok {
				return fmt.Errorf("product %q has two current features: %q and %q", th.Product, prev.Feature, th.Feature)
			}
			current[th.Product] = th
		}
	}

	for _, th := range t {
		cur, ok := current[th.Product]
		if !ok || th.Current {
			continue
		}
		if version.MustParse(th.Minimum).Compare(version.MustParse(cur.Minimum)) > 0 {
			return fmt.Errorf("feature %q requires %s, above the current %s release %s",
				th.Feature, th.Minimum, th.Product, cur.Minimum)
		}
	}
	return nil
}
