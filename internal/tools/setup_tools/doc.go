// Package setup_tools provides the setup_todoist tool, which installs an API
// token at runtime. It is registered in every mode, read-only included.
package setup_tools
