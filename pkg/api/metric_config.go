package api

import (
	"regexp"
	"slices"
	"strings"
)

// JSONLinesConfig describes a JSON Lines metric source. The location is an
// absolute object-store path, or a path relative to the runtime generated
// output folder when the owning MetricConfig says so.
type JSONLinesConfig struct {
	fileLocation string
}

func NewJSONLinesConfig(fileLocation string) (JSONLinesConfig, error) {
	if strings.TrimSpace(fileLocation) == "" {
		return JSONLinesConfig{}, missingField("json_lines.file_location")
	}
	return JSONLinesConfig{fileLocation: fileLocation}, nil
}

func (c JSONLinesConfig) FileLocation() string {
	return c.fileLocation
}

func (c JSONLinesConfig) complete() bool {
	return c.fileLocation != ""
}

// SummaryConfig describes a TensorBoard summary metric source.
type SummaryConfig struct {
	fileLocation         string
	aggregationStrategy  AggregationStrategy
	includeTagPatterns   []TagPattern
	excludeTagPatterns   []TagPattern
	hasInclude           bool
	hasExclude           bool
	useRegexFileLocation bool
}

type SummaryOption func(*summaryOptions)

type summaryOptions struct {
	include    []string
	exclude    []string
	hasInclude bool
	hasExclude bool
	useRegex   bool
}

// WithIncludeTagPatterns restricts the summary to tags matching at least one
// pattern. Without it every tag is included.
func WithIncludeTagPatterns(patterns ...string) SummaryOption {
	return func(o *summaryOptions) {
		o.include = append(o.include, patterns...)
		o.hasInclude = true
	}
}

// WithExcludeTagPatterns drops tags matching any pattern. Exclusion takes
// precedence over inclusion.
func WithExcludeTagPatterns(patterns ...string) SummaryOption {
	return func(o *summaryOptions) {
		o.exclude = append(o.exclude, patterns...)
		o.hasExclude = true
	}
}

// WithRegexFileLocation marks the file location as a regular expression used
// to discover the event file.
func WithRegexFileLocation(useRegex bool) SummaryOption {
	return func(o *summaryOptions) {
		o.useRegex = useRegex
	}
}

func NewSummaryConfig(fileLocation string, strategy AggregationStrategy, opts ...SummaryOption) (SummaryConfig, error) {
	if strings.TrimSpace(fileLocation) == "" {
		return SummaryConfig{}, missingField("tensorboard_summary.file_location")
	}
	if strategy == "" {
		return SummaryConfig{}, missingField("tensorboard_summary.aggregation_strategy")
	}
	if !strategy.IsValid() {
		return SummaryConfig{}, invalidValue("tensorboard_summary.aggregation_strategy", string(strategy), AggregationStrategies())
	}

	options := &summaryOptions{}
	for _, opt := range opts {
		opt(options)
	}

	if options.useRegex {
		if _, err := regexp.Compile(fileLocation); err != nil {
			return SummaryConfig{}, invalidPattern("tensorboard_summary.file_location", fileLocation, err.Error())
		}
	}
	include, err := compileTagPatterns("tensorboard_summary.include_tag_patterns", options.include)
	if err != nil {
		return SummaryConfig{}, err
	}
	exclude, err := compileTagPatterns("tensorboard_summary.exclude_tag_patterns", options.exclude)
	if err != nil {
		return SummaryConfig{}, err
	}

	return SummaryConfig{
		fileLocation:         fileLocation,
		aggregationStrategy:  strategy,
		includeTagPatterns:   include,
		excludeTagPatterns:   exclude,
		hasInclude:           options.hasInclude,
		hasExclude:           options.hasExclude,
		useRegexFileLocation: options.useRegex,
	}, nil
}

func (c SummaryConfig) FileLocation() string {
	return c.fileLocation
}

func (c SummaryConfig) AggregationStrategy() AggregationStrategy {
	return c.aggregationStrategy
}

// IncludeTagPatterns returns the include list; ok is false when no include
// list was supplied, meaning every tag is included.
func (c SummaryConfig) IncludeTagPatterns() (patterns []string, ok bool) {
	return patternStrings(c.includeTagPatterns), c.hasInclude
}

// ExcludeTagPatterns returns the exclude list; ok is false when no exclude
// list was supplied.
func (c SummaryConfig) ExcludeTagPatterns() (patterns []string, ok bool) {
	return patternStrings(c.excludeTagPatterns), c.hasExclude
}

func (c SummaryConfig) UseRegexFileLocation() bool {
	return c.useRegexFileLocation
}

// IncludesTag reports whether tag survives the include/exclude filter.
func (c SummaryConfig) IncludesTag(tag string) bool {
	if len(c.excludeTagPatterns) > 0 && matchesAny(c.excludeTagPatterns, tag) {
		return false
	}
	if len(c.includeTagPatterns) > 0 && !matchesAny(c.includeTagPatterns, tag) {
		return false
	}
	return true
}

// FilterTags keeps the tags accepted by IncludesTag, preserving order.
func (c SummaryConfig) FilterTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		if c.IncludesTag(tag) {
			out = append(out, tag)
		}
	}
	return out
}

func (c SummaryConfig) complete() bool {
	return c.fileLocation != "" && c.aggregationStrategy.IsValid()
}

func patternStrings(patterns []TagPattern) []string {
	if patterns == nil {
		return nil
	}
	out := make([]string, len(patterns))
	for i, p := range patterns {
		out[i] = p.String()
	}
	return out
}

// ProfileConfig describes a profiler trace source. The location is a
// directory; trace files sit one directory below it.
type ProfileConfig struct {
	fileLocation string
}

func NewProfileConfig(fileLocation string) (ProfileConfig, error) {
	if strings.TrimSpace(fileLocation) == "" {
		return ProfileConfig{}, missingField("profile.file_location")
	}
	return ProfileConfig{fileLocation: fileLocation}, nil
}

func (c ProfileConfig) FileLocation() string {
	return c.fileLocation
}

// DiscoveryPattern is the pattern trace files are matched with by the
// ingestion tooling.
func (c ProfileConfig) DiscoveryPattern() string {
	return ProfileDiscoveryPattern(c.fileLocation)
}

// WithMetrics pairs the profile location with the output of the trace
// converter. The config itself is left untouched.
func (c ProfileConfig) WithMetrics(metrics map[string]float64) ProfileMetrics {
	return NewProfileMetrics(c.fileLocation, metrics)
}

func (c ProfileConfig) complete() bool {
	return c.fileLocation != ""
}

// MetricConfig is the metric configuration of one benchmark run. Each source is
// optional and at most one of each kind is attached.
type MetricConfig struct {
	jsonLines                    *JSONLinesConfig
	tensorBoardSummary           *SummaryConfig
	profile                      *ProfileConfig
	useRuntimeGeneratedGCSFolder bool
}

type MetricOption func(*MetricConfig) error

func WithJSONLines(c JSONLinesConfig) MetricOption {
	return func(m *MetricConfig) error {
		if !c.complete() {
			return missingField("json_lines.file_location")
		}
		if m.jsonLines != nil {
			return invalidValue("json_lines", c.fileLocation, nil).withReason("a json_lines source is already attached")
		}
		m.jsonLines = &c
		return nil
	}
}

func WithTensorBoardSummary(c SummaryConfig) MetricOption {
	return func(m *MetricConfig) error {
		if c.fileLocation == "" {
			return missingField("tensorboard_summary.file_location")
		}
		if !c.aggregationStrategy.IsValid() {
			return missingField("tensorboard_summary.aggregation_strategy")
		}
		if m.tensorBoardSummary != nil {
			return invalidValue("tensorboard_summary", c.fileLocation, nil).withReason("a tensorboard_summary source is already attached")
		}
		m.tensorBoardSummary = &c
		return nil
	}
}

func WithProfile(c ProfileConfig) MetricOption {
	return func(m *MetricConfig) error {
		if !c.complete() {
			return missingField("profile.file_location")
		}
		if m.profile != nil {
			return invalidValue("profile", c.fileLocation, nil).withReason("a profile source is already attached")
		}
		m.profile = &c
		return nil
	}
}

// WithRuntimeGeneratedGCSFolder makes every attached file location relative to
// the output folder generated for the run.
func WithRuntimeGeneratedGCSFolder(enabled bool) MetricOption {
	return func(m *MetricConfig) error {
		m.useRuntimeGeneratedGCSFolder = enabled
		return nil
	}
}

func NewMetricConfig(opts ...MetricOption) (MetricConfig, error) {
	m := MetricConfig{}
	for _, opt := range opts {
		if err := opt(&m); err != nil {
			return MetricConfig{}, err
		}
	}
	return m, nil
}

func (m MetricConfig) JSONLines() (JSONLinesConfig, bool) {
	if m.jsonLines == nil {
		return JSONLinesConfig{}, false
	}
	return *m.jsonLines, true
}

func (m MetricConfig) TensorBoardSummary() (SummaryConfig, bool) {
	if m.tensorBoardSummary == nil {
		return SummaryConfig{}, false
	}
	return *m.tensorBoardSummary, true
}

func (m MetricConfig) Profile() (ProfileConfig, bool) {
	if m.profile == nil {
		return ProfileConfig{}, false
	}
	return *m.profile, true
}

func (m MetricConfig) UseRuntimeGeneratedGCSFolder() bool {
	return m.useRuntimeGeneratedGCSFolder
}

// Formats lists the formats of the attached sources.
func (m MetricConfig) Formats() []FormatType {
	formats := []FormatType{}
	if m.jsonLines != nil {
		formats = append(formats, FormatJSONLines)
	}
	if m.tensorBoardSummary != nil {
		formats = append(formats, FormatTensorBoardSummary)
	}
	if m.profile != nil {
		formats = append(formats, FormatProfile)
	}
	return formats
}

func (m MetricConfig) HasFormat(format FormatType) bool {
	return slices.Contains(m.Formats(), format)
}

// IsEmpty reports that no source is attached, so there is nothing to ingest.
func (m MetricConfig) IsEmpty() bool {
	return m.jsonLines == nil && m.tensorBoardSummary == nil && m.profile == nil
}

func (e *ValidationError) withReason(reason string) *ValidationError {
	e.Reason = reason
	return e
}
