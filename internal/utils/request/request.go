package request

import (
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// New returns a resty client for upstream APIs. Retries are left to callers.
func New(timeout time.Duration) *resty.Client {
	client := resty.New().SetTransport(&http.Transport{
		Proxy: http.ProxyFromEnvironment, // 通用适配环境变量
	})
	if timeout > 0 {
		client.SetTimeout(timeout)
	}
	return client
}
