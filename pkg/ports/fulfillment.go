package ports

import (
	"context"

	"github.com/parleybot/parley/pkg/domain"
)

// FulfillmentInvoker executes the configured business action for a completed
// intent. Implementations must honor the context deadline; the engine treats
// a timeout as a failed result. A non-nil error indicates a transport-level
// failure and is classified by the engine as a fulfillment failure.
type FulfillmentInvoker interface {
	Invoke(ctx context.Context, url string, req domain.FulfillmentRequest) (domain.FulfillmentResult, error)
}
