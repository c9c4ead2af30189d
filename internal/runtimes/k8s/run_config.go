package k8s

// Contains the configuration logic that prepares the ConfigMap of a run
import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strings"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/util/validation"

	"github.com/xlml/bench-metrics/pkg/api"
)

const (
	defaultNamespace       = "default"
	inClusterNamespaceFile = "/var/run/secrets/kubernetes.io/serviceaccount/namespace"
	configMapPrefix        = "bench-metrics-"
	runDataKey             = "run.json"

	labelManagedBy   = "app.kubernetes.io/managed-by"
	labelBenchmarkID = "bench-metrics/benchmark-id"
	labelDataset     = "bench-metrics/dataset"
	annotationID     = "bench-metrics/benchmark-id"
	managedByValue   = "bench-metrics"
)

var invalidNameChars = regexp.MustCompile(`[^a-z0-9-]+`)

type runConfig struct {
	name        string
	namespace   string
	benchmarkID string
	dataset     api.DatasetOption
	runJSON     string
}

func buildRunConfig(run *api.BenchmarkRun, namespace string) (*runConfig, error) {
	if run == nil {
		return nil, fmt.Errorf("run is required")
	}
	name, err := configMapName(run.BenchmarkID)
	if err != nil {
		return nil, err
	}
	runJSON, err := json.MarshalIndent(api.DocumentOfRun(run), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal run: %w", err)
	}
	return &runConfig{
		name:        name,
		namespace:   resolveNamespace(namespace),
		benchmarkID: run.BenchmarkID,
		dataset:     run.Dataset,
		runJSON:     string(runJSON),
	}, nil
}

// configMapName maps a benchmark id onto a DNS-1123 subdomain. Underscores
// and other characters Kubernetes does not allow in names become dashes.
func configMapName(benchmarkID string) (string, error) {
	if benchmarkID == "" {
		return "", fmt.Errorf("benchmark id is required")
	}
	name := configMapPrefix + strings.Trim(invalidNameChars.ReplaceAllString(strings.ToLower(benchmarkID), "-"), "-")
	if len(name) > validation.DNS1123SubdomainMaxLength {
		name = strings.TrimRight(name[:validation.DNS1123SubdomainMaxLength], "-")
	}
	if errs := validation.IsDNS1123Subdomain(name); len(errs) > 0 {
		return "", fmt.Errorf("benchmark id %q cannot be used as a ConfigMap name: %s", benchmarkID, strings.Join(errs, ", "))
	}
	return name, nil
}

func buildConfigMap(cfg *runConfig) *corev1.ConfigMap {
	labels := map[string]string{
		labelManagedBy: managedByValue,
		labelDataset:   string(cfg.dataset),
	}
	// long benchmark ids only go into the annotation
	if len(validation.IsValidLabelValue(cfg.benchmarkID)) == 0 {
		labels[labelBenchmarkID] = cfg.benchmarkID
	}
	return &corev1.ConfigMap{
		ObjectMeta: metav1.ObjectMeta{
			Name:        cfg.name,
			Namespace:   cfg.namespace,
			Labels:      labels,
			Annotations: map[string]string{annotationID: cfg.benchmarkID},
		},
		Data: map[string]string{
			runDataKey: cfg.runJSON,
		},
	}
}

func resolveNamespace(configured string) string {
	if configured != "" {
		return configured
	}
	inClusterNamespace := readInClusterNamespace()
	if inClusterNamespace != "" {
		return inClusterNamespace
	}
	return defaultNamespace
}

func readInClusterNamespace() string {
	content, err := os.ReadFile(inClusterNamespaceFile)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(content))
}
