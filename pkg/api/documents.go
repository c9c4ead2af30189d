package api

// The document types are the serialized shape of the configuration, used for
// YAML definition files, JSON hand-off and mapstructure decoding. They carry
// no guarantees of their own; convert them with ToMetricConfig/ToBenchmarkRun.

type JSONLinesDocument struct {
	FileLocation string `mapstructure:"file_location" yaml:"file_location" json:"file_location" validate:"required"`
}

type SummaryDocument struct {
	FileLocation         string   `mapstructure:"file_location" yaml:"file_location" json:"file_location" validate:"required"`
	AggregationStrategy  string   `mapstructure:"aggregation_strategy" yaml:"aggregation_strategy" json:"aggregation_strategy" validate:"required,aggregation_strategy"`
	IncludeTagPatterns   []string `mapstructure:"include_tag_patterns" yaml:"include_tag_patterns,omitempty" json:"include_tag_patterns,omitempty" validate:"omitempty,dive,tag_pattern"`
	ExcludeTagPatterns   []string `mapstructure:"exclude_tag_patterns" yaml:"exclude_tag_patterns,omitempty" json:"exclude_tag_patterns,omitempty" validate:"omitempty,dive,tag_pattern"`
	UseRegexFileLocation bool     `mapstructure:"use_regex_file_location" yaml:"use_regex_file_location,omitempty" json:"use_regex_file_location,omitempty"`
}

type ProfileDocument struct {
	FileLocation string `mapstructure:"file_location" yaml:"file_location" json:"file_location" validate:"required"`
}

type MetricConfigDocument struct {
	JSONLines                    *JSONLinesDocument `mapstructure:"json_lines" yaml:"json_lines,omitempty" json:"json_lines,omitempty" validate:"omitempty"`
	TensorBoardSummary           *SummaryDocument   `mapstructure:"tensorboard_summary" yaml:"tensorboard_summary,omitempty" json:"tensorboard_summary,omitempty" validate:"omitempty"`
	Profile                      *ProfileDocument   `mapstructure:"profile" yaml:"profile,omitempty" json:"profile,omitempty" validate:"omitempty"`
	UseRuntimeGeneratedGCSFolder bool               `mapstructure:"use_runtime_generated_gcs_folder" yaml:"use_runtime_generated_gcs_folder,omitempty" json:"use_runtime_generated_gcs_folder,omitempty"`
}

type BenchmarkRunDocument struct {
	BenchmarkID  string               `mapstructure:"benchmark_id" yaml:"benchmark_id" json:"benchmark_id" validate:"required"`
	Dataset      string               `mapstructure:"dataset" yaml:"dataset" json:"dataset" validate:"required,dataset_option"`
	OutputFolder string               `mapstructure:"output_folder" yaml:"output_folder,omitempty" json:"output_folder,omitempty"`
	MetricConfig MetricConfigDocument `mapstructure:"metric_config" yaml:"metric_config" json:"metric_config"`
}

// BenchmarkRunFile is a definition file holding several runs.
type BenchmarkRunFile struct {
	Runs []BenchmarkRunDocument `mapstructure:"runs" yaml:"runs" json:"runs" validate:"required,min=1,dive"`
}

func (d *MetricConfigDocument) ToMetricConfig() (MetricConfig, error) {
	opts := []MetricOption{WithRuntimeGeneratedGCSFolder(d.UseRuntimeGeneratedGCSFolder)}

	if d.JSONLines != nil {
		c, err := NewJSONLinesConfig(d.JSONLines.FileLocation)
		if err != nil {
			return MetricConfig{}, err
		}
		opts = append(opts, WithJSONLines(c))
	}
	if d.TensorBoardSummary != nil {
		c, err := d.TensorBoardSummary.toSummaryConfig()
		if err != nil {
			return MetricConfig{}, err
		}
		opts = append(opts, WithTensorBoardSummary(c))
	}
	if d.Profile != nil {
		c, err := NewProfileConfig(d.Profile.FileLocation)
		if err != nil {
			return MetricConfig{}, err
		}
		opts = append(opts, WithProfile(c))
	}
	return NewMetricConfig(opts...)
}

func (d *SummaryDocument) toSummaryConfig() (SummaryConfig, error) {
	var strategy AggregationStrategy
	if d.AggregationStrategy != "" {
		s, err := GetAggregationStrategy(d.AggregationStrategy)
		if err != nil {
			return SummaryConfig{}, prefixField("tensorboard_summary", err)
		}
		strategy = s
	}
	opts := []SummaryOption{WithRegexFileLocation(d.UseRegexFileLocation)}
	if d.IncludeTagPatterns != nil {
		opts = append(opts, WithIncludeTagPatterns(d.IncludeTagPatterns...))
	}
	if d.ExcludeTagPatterns != nil {
		opts = append(opts, WithExcludeTagPatterns(d.ExcludeTagPatterns...))
	}
	return NewSummaryConfig(d.FileLocation, strategy, opts...)
}

func (d *BenchmarkRunDocument) ToBenchmarkRun() (*BenchmarkRun, error) {
	if d.Dataset == "" {
		return nil, missingField("dataset")
	}
	dataset, err := GetDatasetOption(d.Dataset)
	if err != nil {
		return nil, err
	}
	metricConfig, err := d.MetricConfig.ToMetricConfig()
	if err != nil {
		return nil, prefixField("metric_config", err)
	}
	return NewBenchmarkRun(d.BenchmarkID, dataset, d.OutputFolder, metricConfig)
}

// DocumentOf converts a MetricConfig back to its serialized shape.
func DocumentOf(m MetricConfig) MetricConfigDocument {
	doc := MetricConfigDocument{UseRuntimeGeneratedGCSFolder: m.useRuntimeGeneratedGCSFolder}
	if m.jsonLines != nil {
		doc.JSONLines = &JSONLinesDocument{FileLocation: m.jsonLines.fileLocation}
	}
	if s := m.tensorBoardSummary; s != nil {
		summary := &SummaryDocument{
			FileLocation:         s.fileLocation,
			AggregationStrategy:  string(s.aggregationStrategy),
			UseRegexFileLocation: s.useRegexFileLocation,
		}
		if s.hasInclude {
			summary.IncludeTagPatterns = patternStrings(s.includeTagPatterns)
		}
		if s.hasExclude {
			summary.ExcludeTagPatterns = patternStrings(s.excludeTagPatterns)
		}
		doc.TensorBoardSummary = summary
	}
	if m.profile != nil {
		doc.Profile = &ProfileDocument{FileLocation: m.profile.fileLocation}
	}
	return doc
}

// DocumentOfRun converts a BenchmarkRun back to its serialized shape.
func DocumentOfRun(r *BenchmarkRun) BenchmarkRunDocument {
	return BenchmarkRunDocument{
		BenchmarkID:  r.BenchmarkID,
		Dataset:      string(r.Dataset),
		OutputFolder: r.OutputFolder,
		MetricConfig: DocumentOf(r.MetricConfig),
	}
}
