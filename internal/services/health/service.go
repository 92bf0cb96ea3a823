package health

const (
	serviceName = "ReportAI Backend"
	version     = "1.0.0"
)

// Status is the health payload served at / and /api/health.
type Status struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Version string `json:"version"`
}

// Service encapsulates health-related checks.
type Service struct{}

// NewService constructs a new health service.
func NewService() *Service {
	return &Service{}
}

// Status returns the service identity with a healthy status.
func (s *Service) Status() Status {
	return Status{Status: "healthy", Service: serviceName, Version: version}
}
