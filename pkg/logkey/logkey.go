package logkey

// Shared attribute keys so log lines stay greppable across packages.
const (
	TraceID   = "TRACE ID"
	ERROR     = "ERROR"
	ProductID = "ProductID"
	Quantity  = "Quantity"
	Page      = "Page"
	OrderID   = "OrderID"
	URL       = "URL"
)
