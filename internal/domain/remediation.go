package domain

// CheckID identifies a kind of check independent of its display name.
type CheckID string

const (
	CheckEnvFile     CheckID = "env.file"
	CheckEnvSection  CheckID = "env.section"
	CheckEnvPresence CheckID = "env.presence"
	CheckEnvValue    CheckID = "env.value"

	CheckDBConnString CheckID = "database.dsn"
	CheckDBProduction CheckID = "database.production"
	CheckDBConnection CheckID = "database.connection"
	CheckDBSchema     CheckID = "database.schema"
	CheckDBMigrations CheckID = "database.migrations"
	CheckDBIndexes    CheckID = "database.indexes"
	CheckDBPooling    CheckID = "database.pooling"
	CheckDBEncryption CheckID = "database.encryption"

	CheckSecReachable      CheckID = "security.reachable"
	CheckSecHTTPS          CheckID = "security.https"
	CheckSecTLS            CheckID = "security.tls"
	CheckSecCertExpiry     CheckID = "security.cert_expiry"
	CheckSecHeaders        CheckID = "security.headers"
	CheckSecCriticalHeader CheckID = "security.critical_header"
	CheckSecCORS           CheckID = "security.cors"
	CheckSecAuthEndpoints  CheckID = "security.auth_endpoints"
	CheckSecAuthIssue      CheckID = "security.auth_issue"
	CheckSecCookies        CheckID = "security.cookies"
	CheckSecDisclosure     CheckID = "security.disclosure"

	CheckPerfReachable   CheckID = "performance.reachable"
	CheckPerfSuccessRate CheckID = "performance.success_rate"
	CheckPerfAvgLatency  CheckID = "performance.avg_latency"
	CheckPerfP95         CheckID = "performance.p95"
	CheckPerfThroughput  CheckID = "performance.throughput"

	CheckAPINetwork        CheckID = "api.network"
	CheckAPITracking       CheckID = "api.tracking_id"
	CheckAPIStatus         CheckID = "api.status"
	CheckAPIContentType    CheckID = "api.content_type"
	CheckAPISchema         CheckID = "api.schema"
	CheckAPIRequiredFields CheckID = "api.required_fields"
	CheckAPIJSONSchema     CheckID = "api.json_schema"
	CheckAPIAuth           CheckID = "api.auth"
	CheckAPISLA            CheckID = "api.sla"

	CheckDeployCI          CheckID = "deployment.ci"
	CheckDeployCISteps     CheckID = "deployment.ci_steps"
	CheckDeployContainer   CheckID = "deployment.container"
	CheckDeployDockerfile  CheckID = "deployment.dockerfile"
	CheckDeployBuildTool   CheckID = "deployment.build_tool"
	CheckDeployBuildScript CheckID = "deployment.build_script"
	CheckDeployStatic      CheckID = "deployment.static"
	CheckDeployMinified    CheckID = "deployment.minified"
	CheckDeployEnvFile     CheckID = "deployment.env_file"
	CheckDeployEnvExample  CheckID = "deployment.env_example"
	CheckDeployVCS         CheckID = "deployment.vcs"

	CheckLogConfig CheckID = "logging.config"
	CheckLogLevel  CheckID = "logging.level"
	CheckLogDir    CheckID = "logging.dir"
	CheckLogFiles  CheckID = "logging.files"
	CheckLogJSON   CheckID = "logging.json"
	CheckLogPII    CheckID = "logging.pii"

	CheckMonEndpoint   CheckID = "monitoring.endpoint"
	CheckMonFormat     CheckID = "monitoring.format"
	CheckMonCoreMetric CheckID = "monitoring.core_metric"
	CheckMonTrace      CheckID = "monitoring.trace"
)

// DefaultRemediation is returned for checks without specific advice.
const DefaultRemediation = "Refer to internal architectural standards for production readiness."

var remediations = map[CheckID]string{
	CheckEnvFile:     "Create the environment file from .env.example and fill in every mandatory section.",
	CheckEnvPresence: "Define the missing variable in the environment file or the deployment secret store.",
	CheckEnvValue:    "Correct the value so it matches the documented type and production constraints.",

	CheckDBConnection: "Verify the database host is reachable and the credentials in DATABASE_URL are correct.",
	CheckDBSchema:     "Initialize database schema using the migration system or setup scripts.",
	CheckDBMigrations: "Adopt a migration tool so schema changes are versioned and repeatable.",
	CheckDBIndexes:    "Add indexes on frequently filtered columns such as customers.email.",
	CheckDBPooling:    "Configure connection pool limits in the connection string or driver settings.",
	CheckDBEncryption: "Require TLS for database connections (for PostgreSQL use sslmode=verify-full).",

	CheckSecHTTPS:          "Serve the application over HTTPS and redirect plain HTTP.",
	CheckSecCertExpiry:     "Renew the TLS certificate and automate renewal.",
	CheckSecHeaders:        "Add the missing header in your web server (Nginx/Apache) or application middleware.",
	CheckSecCriticalHeader: "Add the missing header in your web server (Nginx/Apache) or application middleware.",
	CheckSecCORS:           "Restrict Access-Control-Allow-Origin to an explicit list of trusted origins.",
	CheckSecAuthIssue:      "Add rate limiting and reject empty credentials on authentication endpoints.",
	CheckSecCookies:        "Set HttpOnly, Secure and SameSite on every session cookie.",
	CheckSecDisclosure:     "Remove version banners and never return secrets in response bodies.",

	CheckPerfSuccessRate: "Inspect server errors under load and fix failing requests before release.",
	CheckPerfAvgLatency:  "Investigate bottleneck using a profiler. Consider caching, indexing, or horizontal scaling.",
	CheckPerfP95:         "Investigate bottleneck using a profiler. Consider caching, indexing, or horizontal scaling.",
	CheckPerfThroughput:  "Investigate bottleneck using a profiler. Consider caching, indexing, or horizontal scaling.",

	CheckAPITracking:       "Ensure 'X-Request-ID' is accepted and echoed in responses for distributed tracing.",
	CheckAPISchema:         "Verify that API response body matches the contract. Update models or documentation.",
	CheckAPIRequiredFields: "Verify that API response body matches the contract. Update models or documentation.",
	CheckAPIJSONSchema:     "Verify that API response body matches the contract. Update models or documentation.",
	CheckAPIAuth:           "Protect the endpoint with authentication middleware and return 401 for anonymous calls.",
	CheckAPISLA:            "Investigate bottleneck using a profiler. Consider caching, indexing, or horizontal scaling.",

	CheckDeployDockerfile: "Review the Dockerfile to use specific version tags, non-root users, and multi-stage builds.",
	CheckDeployEnvExample: "Commit a .env.example that lists every variable without real values.",

	CheckLogLevel: "Set LOG_LEVEL to INFO or WARN in production environment configuration.",
	CheckLogJSON:  "Configure a JSON formatter for easier log aggregation.",
	CheckLogPII:   "Ensure secrets are not logged and implement log masking for sensitive data.",

	CheckMonCoreMetric: "Register the standard process and HTTP collectors in the metrics exporter.",
	CheckMonTrace:      "Propagate a trace context header (traceparent or X-Request-Id) on every response.",
}

// RemediationFor returns the advice registered for id.
func RemediationFor(id CheckID) string {
	if advice, ok := remediations[id]; ok {
		return advice
	}
	return DefaultRemediation
}

// AttachRemediation fills in advice on FAIL and WARNING results that carry none.
func AttachRemediation(r CheckResult) CheckResult {
	if r.Status == StatusPass || r.Remediation != "" {
		return r
	}
	r.Remediation = RemediationFor(r.Check)
	return r
}
