package version

import "fmt"

const (
	Version = "v0.1.0"

	colorReset    = "\033[0m"
	colorCyanBold = "\033[36;1m"
)

// asciiArtTpl returns the ASCII art of squire.
func asciiArtTpl() string {
	asciiArt := `
   _____ ____  __  ___________  ______
  / ___// __ \/ / / /  _/ __ \/ ____/
  \__ \/ / / / / / // // /_/ / __/
 ___/ / /_/ / /_/ // // _, _/ /___
/____/\___\_\____/___/_/ |_/_____/
%s ` + Version

	asciiArt = asciiArt[1:]                          // This just removes the first newline character
	asciiArt = colorCyanBold + asciiArt + colorReset // Add color to the ASCII art

	return asciiArt
}

// ShellVersion returns the version banner for the interactive shell.
func ShellVersion() string {
	return fmt.Sprintf(asciiArtTpl(), "Shell")
}

// ProbeVersion returns the version banner for the feature probe.
func ProbeVersion() string {
	return fmt.Sprintf(asciiArtTpl(), "Probe")
}
