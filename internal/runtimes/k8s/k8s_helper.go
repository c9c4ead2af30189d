package k8s

import (
	"context"
	"fmt"

	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
	typedcorev1 "k8s.io/client-go/kubernetes/typed/core/v1"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
)

// KubernetesHelper is the only place that talks to the cluster. The runtime
// goes through it so tests can swap in the fake clientset.
type KubernetesHelper struct {
	clientset kubernetes.Interface
}

// NewKubernetesHelper connects with an explicit kubeconfig path when given,
// then the in-cluster config, then the default kubeconfig loading rules.
func NewKubernetesHelper(kubeconfig string) (*KubernetesHelper, error) {
	config, err := restConfig(kubeconfig)
	if err != nil {
		return nil, err
	}
	clientset, err := kubernetes.NewForConfig(config)
	if err != nil {
		return nil, err
	}
	return &KubernetesHelper{clientset: clientset}, nil
}

func restConfig(kubeconfig string) (*rest.Config, error) {
	loadingRules := clientcmd.NewDefaultClientConfigLoadingRules()
	if kubeconfig != "" {
		loadingRules.ExplicitPath = kubeconfig
	} else if config, err := rest.InClusterConfig(); err == nil {
		return config, nil
	}
	return clientcmd.NewNonInteractiveDeferredLoadingClientConfig(
		loadingRules,
		&clientcmd.ConfigOverrides{},
	).ClientConfig()
}

func (h *KubernetesHelper) configMaps(namespace, name string) (typedcorev1.ConfigMapInterface, error) {
	if namespace == "" || name == "" {
		return nil, fmt.Errorf("namespace and name are required")
	}
	return h.clientset.CoreV1().ConfigMaps(namespace), nil
}

// ApplyConfigMap creates cm, or overwrites the data, labels and annotations of
// the existing ConfigMap with the same name. created reports which happened.
func (h *KubernetesHelper) ApplyConfigMap(ctx context.Context, cm *corev1.ConfigMap) (applied *corev1.ConfigMap, created bool, err error) {
	client, err := h.configMaps(cm.Namespace, cm.Name)
	if err != nil {
		return nil, false, err
	}
	applied, err = client.Create(ctx, cm, metav1.CreateOptions{})
	if err == nil {
		return applied, true, nil
	}
	if !apierrors.IsAlreadyExists(err) {
		return nil, false, err
	}

	existing, err := client.Get(ctx, cm.Name, metav1.GetOptions{})
	if err != nil {
		return nil, false, err
	}
	existing.Data = cm.Data
	existing.Labels = cm.Labels
	existing.Annotations = cm.Annotations
	applied, err = client.Update(ctx, existing, metav1.UpdateOptions{})
	return applied, false, err
}

func (h *KubernetesHelper) GetConfigMap(ctx context.Context, namespace, name string) (*corev1.ConfigMap, error) {
	client, err := h.configMaps(namespace, name)
	if err != nil {
		return nil, err
	}
	return client.Get(ctx, name, metav1.GetOptions{})
}
