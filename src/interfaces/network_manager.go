package interfaces

// -----------------------------------------------------------------------------
// INetworkManager defines the contract for HTTP requests against the provider.
// -----------------------------------------------------------------------------

type INetworkManager interface {

	// -----------------------------------------------------------------------------

	// Get performs a GET request with query parameters and headers.
	// Non-2xx responses are returned as *helpers.HTTPStatusError so callers
	// can inspect the status code (401 detection).
	Get(url string, params map[string]string, headers map[string]string) ([]byte, error)

	// -----------------------------------------------------------------------------

	// PostForm performs a form-encoded POST request.
	// Same error contract as Get.
	PostForm(url string, form map[string]string, headers map[string]string) ([]byte, error)
}
