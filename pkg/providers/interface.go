package providers

import (
	"net/http"

	"github.com/imbecility/dood-gateway/pkg/models"
)

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type Provider interface {
	Name() string
	Resolve(embedURL string) (*models.ResolveResult, error)
}
