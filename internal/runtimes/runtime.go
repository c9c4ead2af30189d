package runtimes

import (
	"log/slog"

	validator "github.com/go-playground/validator/v10"

	"github.com/xlml/bench-metrics/internal/abstractions"
	"github.com/xlml/bench-metrics/internal/config"
	"github.com/xlml/bench-metrics/internal/runtimes/k8s"
	"github.com/xlml/bench-metrics/internal/runtimes/local"
)

func NewRuntime(logger *slog.Logger, validate *validator.Validate, serviceConfig *config.Config) (abstractions.Runtime, error) {
	var runtime abstractions.Runtime
	var err error

	if serviceConfig.Service != nil && serviceConfig.Service.LocalMode {
		runtime, err = local.NewLocalRuntime(logger, validate, serviceConfig.Service.RunsDir)
	} else {
		kubernetes := serviceConfig.Kubernetes
		if kubernetes == nil {
			kubernetes = &config.KubernetesConfig{}
		}
		runtime, err = k8s.NewK8sRuntime(logger, validate, kubernetes.Namespace, kubernetes.Kubeconfig)
	}

	return runtime, err
}
