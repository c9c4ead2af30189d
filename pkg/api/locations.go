package api

import (
	"fmt"
	"maps"
	"regexp"
	"strings"
	"time"
)

const (
	// profileTraceSuffix is the file name suffix of profiler trace files.
	profileTraceSuffix = "xplane.pb"

	folderTimestampLayout = "20060102150405"
)

// ProfileDiscoveryPattern returns the pattern trace files under a profile
// directory are matched with: any immediate subdirectory, then any file whose
// name ends in xplane.pb. fileLocation is used exactly as given.
func ProfileDiscoveryPattern(fileLocation string) string {
	return fmt.Sprintf("%s/.*/*%s", fileLocation, profileTraceSuffix)
}

// IsProfileTrace reports whether a key relative to a profile directory
// matches the discovery pattern.
func IsProfileTrace(relativeKey string) bool {
	parts := strings.Split(strings.TrimPrefix(relativeKey, "/"), "/")
	if len(parts) != 2 || parts[0] == "" {
		return false
	}
	return strings.HasSuffix(parts[1], profileTraceSuffix)
}

// GenerateFolderLocation builds the output folder of a run:
// {baseDir}/{subfolder}/{benchmarkID}-{UTC timestamp}.
func GenerateFolderLocation(baseDir string, subfolder string, benchmarkID string, now time.Time) (string, error) {
	if strings.TrimSpace(baseDir) == "" {
		return "", missingField("base_dir")
	}
	if strings.TrimSpace(benchmarkID) == "" {
		return "", missingField("benchmark_id")
	}
	folder := strings.TrimSuffix(baseDir, "/")
	if subfolder = strings.Trim(subfolder, "/"); subfolder != "" {
		folder += "/" + subfolder
	}
	return fmt.Sprintf("%s/%s-%s", folder, benchmarkID, now.UTC().Format(folderTimestampLayout)), nil
}

// JoinLocation joins a relative file location beneath folder. The folder may
// carry a scheme (gs://, s3://) which is kept intact.
func JoinLocation(folder string, relative string) string {
	return strings.TrimSuffix(folder, "/") + "/" + strings.TrimPrefix(relative, "/")
}

// Locations are the effective file locations a consumer reads for one run.
type Locations struct {
	JSONLines          string
	TensorBoardSummary string
	Profile            string
	// SummaryIsRegex carries SummaryConfig.UseRegexFileLocation.
	SummaryIsRegex bool
}

// ResolveLocations computes the effective location of every attached source.
// When the runtime generated folder is in use each location is joined beneath
// folder; otherwise the locations are returned as given and folder is ignored.
func (m MetricConfig) ResolveLocations(folder string) (Locations, error) {
	resolve := func(location string) string { return location }
	resolveRegex := resolve
	if m.useRuntimeGeneratedGCSFolder {
		if strings.TrimSpace(folder) == "" {
			return Locations{}, missingField("output_folder").withReason("the metric config uses the runtime generated folder")
		}
		resolve = func(location string) string { return JoinLocation(folder, location) }
		resolveRegex = func(location string) string {
			return regexp.QuoteMeta(strings.TrimSuffix(folder, "/")) + "/" + strings.TrimPrefix(location, "/")
		}
	}

	locations := Locations{}
	if m.jsonLines != nil {
		locations.JSONLines = resolve(m.jsonLines.fileLocation)
	}
	if m.tensorBoardSummary != nil {
		locations.SummaryIsRegex = m.tensorBoardSummary.useRegexFileLocation
		if locations.SummaryIsRegex {
			locations.TensorBoardSummary = resolveRegex(m.tensorBoardSummary.fileLocation)
		} else {
			locations.TensorBoardSummary = resolve(m.tensorBoardSummary.fileLocation)
		}
	}
	if m.profile != nil {
		locations.Profile = resolve(m.profile.fileLocation)
	}
	return locations, nil
}

// ProfileMetrics is the output of the external trace converter for one
// profile location.
type ProfileMetrics struct {
	Location string             `json:"location" yaml:"location"`
	Metrics  map[string]float64 `json:"metrics,omitempty" yaml:"metrics,omitempty"`
}

func NewProfileMetrics(location string, metrics map[string]float64) ProfileMetrics {
	return ProfileMetrics{Location: location, Metrics: maps.Clone(metrics)}
}
