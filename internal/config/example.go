package config

// ExampleConfig returns an example configuration showing all available options.
func ExampleConfig() string {
	return `# todoapp configuration file
# Values can be overridden by environment variables (TODOAPP_*) or CLI flags

# Listen address; the PORT environment variable is also honored
addr = ":3000"

# Storage backend: file or sqlite
store = "file"

# Task data file, relative to the working directory
# (defaults to data/todos.db when store = "sqlite")
data_file = "data/todos.json"

# Lock the data file so several processes can share it
file_lock = true

# Static files served at / (empty disables)
static_dir = "public"

# Task id format: base36 or uuid
id_format = "base36"

# Log every HTTP request
request_log = true

# Logging
log_level = "info"       # debug, info, warn, error
log_format = "text"      # text, json, logfmt
log_timestamps = true
log_caller = false
`
}
