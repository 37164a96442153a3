package stage

// Canonical stage names used in health checks and status output.
const (
	CollectorName = "collector"
	RendererName  = "renderer"
	ProducerName  = "producer"
)

// Health summarizes the readiness of a pipeline stage.
type Health struct {
	Name   string
	Ready  bool
	Detail string
}

// Healthy constructs a ready Health record.
func Healthy(name string) Health {
	return Health{Name: name, Ready: true}
}

// Unhealthy constructs a failing Health record carrying diagnostic detail.
func Unhealthy(name, detail string) Health {
	return Health{Name: name, Ready: false, Detail: detail}
}
