package mockserver

import "fmt"

// ANSI colours for the DEV route listing.
const (
	green      = "\033[32m"
	blue       = "\033[34m"
	cyan       = "\033[36m"
	yellow     = "\033[33m"
	magenta    = "\033[35m"
	gray       = "\033[90m"
	resetColor = "\033[0m"
)

var methodColors = map[string]string{
	"GET":     green,
	"POST":    blue,
	"PUT":     cyan,
	"DELETE":  yellow,
	"PATCH":   magenta,
	"OPTIONS": gray,
}

// colourMethod pads method to a fixed width and colours it by verb.
func colourMethod(method string) string {
	color, ok := methodColors[method]
	if !ok {
		color = gray
	}
	return color + fmt.Sprintf(" %-7s", method) + resetColor
}
