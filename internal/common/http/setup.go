package http

import (
	"net/http"

	"github.com/AlibekovAA/rhythmix/backend/internal/common/constants"
	"github.com/AlibekovAA/rhythmix/backend/internal/common/httpmetrics"
	"github.com/AlibekovAA/rhythmix/backend/internal/common/logger"
)

func BuildBaseHandler(log *logger.Logger, handler http.Handler) http.Handler {
	collector := httpmetrics.New()
	recovery := RecoveryMiddleware(log)
	maxRequestSize := MaxRequestSizeMiddleware(constants.DefaultMaxRequestSize)
	csp := ContentSecurityPolicyMiddleware("")

	return SecurityHeadersMiddleware(csp(CORSMiddleware(TraceIDMiddleware(recovery(maxRequestSize(collector.Wrap(handler)))))))
}
