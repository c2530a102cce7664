package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: web2pdf [command] [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  serve      Run the HTTP PDF service (default)")
	fmt.Fprintln(w, "  render     Render one URL or HTML file to PDF")
	fmt.Fprintln(w, "  doctor     Check browser and environment")
	fmt.Fprintln(w, "  version    Show version information")
	fmt.Fprintln(w, "  help       Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'web2pdf help <command>' for details on a specific command.")
}

// printServeUsage prints usage for the serve command.
func printServeUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: web2pdf serve [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run the HTTP service.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Endpoints:")
	fmt.Fprintln(w, "  GET  /          Liveness text")
	fmt.Fprintln(w, "  GET  /healthz   Engine and capacity as JSON")
	fmt.Fprintln(w, "  POST /pdf       {\"url\": ...} or {\"html\": ...}, optional \"localStorage\"")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "  -c, --config <name>         Config file name or path")
	fmt.Fprintln(w, "  -e, --engine <s>            Browser engine: rod, playwright")
	fmt.Fprintln(w, "      --browser-bin <path>    Browser executable")
	fmt.Fprintln(w, "      --host <addr>           Listen address")
	fmt.Fprintln(w, "      --port <n>              Listen port (default 10000)")
	fmt.Fprintln(w, "      --max-concurrent <n>    Concurrent renders (0 = auto, -1 = unbounded)")
	fmt.Fprintln(w, "      --log-level <s>         debug, info, warn, error")
	fmt.Fprintln(w, "      --log-format <s>        console, json")
	fmt.Fprintln(w, "  -q, --quiet                 Only show errors")
	fmt.Fprintln(w, "  -v, --verbose               Debug logging")
	fmt.Fprintln(w)
	printEnvUsage(w)
}

// printRenderUsage prints usage for the render command.
func printRenderUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: web2pdf render <url|file.html> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Render a single page to PDF.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output:")
	fmt.Fprintln(w, "  -o, --output <path>         Output file or directory (default report.pdf)")
	fmt.Fprintln(w, "  -c, --config <name>         Config file name or path")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Browser:")
	fmt.Fprintln(w, "  -e, --engine <s>            Browser engine: rod, playwright")
	fmt.Fprintln(w, "      --browser-bin <path>    Browser executable")
	fmt.Fprintln(w, "  -t, --timeout <d>           Navigation timeout (e.g. 45s)")
	fmt.Fprintln(w, "      --loading-text <s>      Wait until this text leaves the page (\"\" disables)")
	fmt.Fprintln(w, "      --settle <d>            Pause before printing (default 2s)")
	fmt.Fprintln(w, "  -s, --storage <k=v,...>     localStorage entries (URL targets only)")
	fmt.Fprintln(w, "      --strip-header          Remove the site header before printing")
	fmt.Fprintln(w, "      --script-dir <dir>      Custom scripts/ overrides")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Page:")
	fmt.Fprintln(w, "  -p, --page-size <s>         a4, letter, legal")
	fmt.Fprintln(w, "      --orientation <s>       portrait, landscape")
	fmt.Fprintln(w, "      --margin <f>            Margin in inches (0-3)")
	fmt.Fprintln(w, "      --width-px <n>          Fixed width in CSS pixels, height follows content")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  -q, --quiet                 Only show errors")
	fmt.Fprintln(w, "  -v, --verbose               Debug logging")
}

// printDoctorUsage prints usage for the doctor command.
func printDoctorUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: web2pdf doctor [--json]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Check the browser, environment and effective service settings.")
	fmt.Fprintln(w, "Exits 1 when a blocking problem is found.")
}

// printEnvUsage lists recognized environment variables.
func printEnvUsage(w io.Writer) {
	fmt.Fprintln(w, "Environment:")
	fmt.Fprintln(w, "  PORT                        Listen port")
	fmt.Fprintln(w, "  APP_ENV                     Runtime environment label (NODE_ENV fallback)")
	fmt.Fprintln(w, "  WEB2PDF_CONFIG              Config file name or path")
	fmt.Fprintln(w, "  WEB2PDF_ENGINE              rod, playwright")
	fmt.Fprintln(w, "  WEB2PDF_BROWSER_BIN         Browser executable (ROD_BROWSER_BIN fallback)")
	fmt.Fprintln(w, "  WEB2PDF_MAX_CONCURRENT      Concurrent renders")
	fmt.Fprintln(w, "  WEB2PDF_NAV_TIMEOUT         Navigation timeout")
	fmt.Fprintln(w, "  WEB2PDF_EXPOSE_DETAIL       Include engine detail in 500 bodies")
	fmt.Fprintln(w, "  WEB2PDF_LOG_LEVEL           debug, info, warn, error")
	fmt.Fprintln(w, "  WEB2PDF_LOG_FORMAT          console, json")
}

// runHelpCmd prints help for the given command.
func runHelpCmd(args []string, env *Environment) int {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return ExitSuccess
	}

	switch args[0] {
	case "serve":
		printServeUsage(env.Stdout)
	case "render":
		printRenderUsage(env.Stdout)
	case "doctor":
		printDoctorUsage(env.Stdout)
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: web2pdf version")
	default:
		fmt.Fprintf(env.Stderr, "unknown command: %s\n", args[0])
		printUsage(env.Stderr)
		return ExitUsage
	}
	return ExitSuccess
}
