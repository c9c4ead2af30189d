package k8s

// Runtime entrypoints for handing benchmark runs to the cluster.
import (
	"context"
	"fmt"
	"log/slog"

	validator "github.com/go-playground/validator/v10"
	apierrors "k8s.io/apimachinery/pkg/api/errors"

	"github.com/xlml/bench-metrics/internal/abstractions"
	"github.com/xlml/bench-metrics/internal/constants"
	"github.com/xlml/bench-metrics/internal/executioncontext"
	"github.com/xlml/bench-metrics/internal/messages"
	"github.com/xlml/bench-metrics/internal/serialization"
	se "github.com/xlml/bench-metrics/internal/serviceerrors"
	"github.com/xlml/bench-metrics/pkg/api"
)

type K8sRuntime struct {
	logger    *slog.Logger
	ctx       context.Context
	helper    *KubernetesHelper
	validate  *validator.Validate
	namespace string
}

// NewK8sRuntime creates a Kubernetes runtime.
func NewK8sRuntime(logger *slog.Logger, validate *validator.Validate, namespace string, kubeconfig string) (abstractions.Runtime, error) {
	helper, err := NewKubernetesHelper(kubeconfig)
	if err != nil {
		return nil, err
	}
	return newK8sRuntime(logger, validate, namespace, helper), nil
}

func newK8sRuntime(logger *slog.Logger, validate *validator.Validate, namespace string, helper *KubernetesHelper) *K8sRuntime {
	return &K8sRuntime{
		logger:    logger,
		ctx:       context.Background(),
		helper:    helper,
		validate:  validate,
		namespace: resolveNamespace(namespace),
	}
}

func (r *K8sRuntime) WithLogger(logger *slog.Logger) abstractions.Runtime {
	c := *r
	c.logger = logger
	return &c
}

func (r *K8sRuntime) WithContext(ctx context.Context) abstractions.Runtime {
	c := *r
	c.ctx = ctx
	return &c
}

// PublishRun stores the run definition in a ConfigMap, replacing an earlier
// definition of the same benchmark. It returns namespace/name.
func (r *K8sRuntime) PublishRun(run *api.BenchmarkRun) (string, error) {
	cfg, err := buildRunConfig(run, r.namespace)
	if err != nil {
		return "", err
	}
	configMap := buildConfigMap(cfg)
	_, created, err := r.helper.ApplyConfigMap(r.ctx, configMap)
	if err != nil {
		return "", fmt.Errorf("publish run %q: %w", run.BenchmarkID, err)
	}
	if !created {
		r.logger.Info("Replaced the earlier run definition", "name", configMap.Name)
	}

	target := configMap.Namespace + "/" + configMap.Name
	r.logger.Info("Published run",
		constants.LOG_MESSAGE_CODE, constants.MESSAGE_CODE_RUN_PUBLISHED,
		constants.LOG_BENCHMARK_ID, run.BenchmarkID,
		constants.LOG_LOCATION, target,
	)
	return target, nil
}

func (r *K8sRuntime) FetchRun(benchmarkID string) (*api.BenchmarkRun, error) {
	name, err := configMapName(benchmarkID)
	if err != nil {
		return nil, err
	}
	configMap, err := r.helper.GetConfigMap(r.ctx, r.namespace, name)
	if err != nil {
		if apierrors.IsNotFound(err) {
			return nil, se.NewServiceError(messages.ResourceNotFound, "Type", "run", "ResourceId", benchmarkID).WithCause(err)
		}
		return nil, err
	}
	data, ok := configMap.Data[runDataKey]
	if !ok {
		return nil, se.NewServiceError(messages.MissingField, "Field", runDataKey)
	}
	ectx := executioncontext.NewExecutionContext(r.ctx, "", r.logger)
	return serialization.UnmarshalRun(r.validate, ectx, []byte(data))
}

func (r *K8sRuntime) Name() string {
	return "kubernetes"
}
