// Package flags provides pflag values shared by headwatch commands.
package flags
