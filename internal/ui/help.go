package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/pleimann/infodisplay/internal/utils"
)

type example struct {
	cmd  string
	desc string
}

// PrintUsage displays the styled help/usage text
func PrintUsage(version string) {
	name := utils.ExecutableName()

	fmt.Printf("%s %s\n", banner(), Muted("v"+version))
	fmt.Println(Muted("Status overlay compositor for small displays"))
	fmt.Println()

	printSection("Usage", []string{
		name + " [run] [flags]           Read commands and drive the display",
		name + " render [flags] script   Render a command script to a PNG",
		name + " preview [flags]         Show the overlay in this terminal",
		name + " list-devices            List available HID displays",
		name + " set-device [args]       Configure the HID display",
		name + " help                    Show this help message",
	})

	printSection("Flags", []string{
		"-config string    Path to configuration file (default \"config.yaml\")",
		"-verbose          Enable verbose logging",
		"-version          Print version and exit",
	})

	printCommandSection()

	printSection("Protocol", []string{
		"X<n>:text            Set the text of row n (1-9)",
		"P:<0-1000>           Set the progress bar in permille",
		"S:<n>                Set the status icon",
		"T:<ms>[,<total ms>]  Show playback times",
		"V:<0|1>              Turn video output off or on",
	})

	printExamples([]example{
		{name, "Run with default config.yaml, commands on stdin"},
		{name + " -config my.yaml", "Run with custom config file"},
		{"mpc idle | " + name, "Feed the display from another program"},
		{name + " render -o out.png demo.txt", "Render a script offline"},
		{name + " preview -config my.yaml", "Try a layout without hardware"},
		{name + " set-device 0x1234 0x5678", "Set device by vendor/product ID"},
	})
}

func banner() string {
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorPrimary).
		Render(utils.ExecutableName())
}

func printSection(title string, items []string) {
	fmt.Println(Bold(title))
	for _, item := range items {
		fmt.Printf("  %s\n", item)
	}
	fmt.Println()
}

func printCommandSection() {
	fmt.Println(Bold("Commands"))

	cmdStyle := lipgloss.NewStyle().
		Foreground(ColorSecondary).
		Bold(true)

	commands := []struct {
		name string
		desc string
		more bool
	}{
		{"run", "Drive the configured sink from stdin or input.command", false},
		{"render", "Replay a script through the overlay and save the last frame", true},
		{"preview", "Render the overlay as colored blocks in the terminal", false},
		{"list-devices", "List available HID displays", false},
		{"set-device", "Set the HID display in the config file", true},
	}
	for _, c := range commands {
		fmt.Printf("  %s\n", cmdStyle.Render(c.name))
		fmt.Printf("      %s\n", c.desc)
		if c.more {
			fmt.Printf("      Run %s for more information\n", Code(utils.ExecutableName()+" "+c.name+" --help"))
		}
		fmt.Println()
	}
}

func printExamples(examples []example) {
	fmt.Println(Bold("Examples"))

	cmdStyle := lipgloss.NewStyle().
		Foreground(ColorSecondary)

	maxLen := 0
	for _, ex := range examples {
		maxLen = max(maxLen, len(ex.cmd))
	}

	for _, ex := range examples {
		padding := strings.Repeat(" ", maxLen-len(ex.cmd)+2)
		fmt.Printf("  %s%s%s\n", cmdStyle.Render(ex.cmd), padding, Muted(ex.desc))
	}
	fmt.Println()
}

func printOption(flag, desc string) {
	fmt.Printf("  %s    %s\n", SubtitleStyle.Render(flag), desc)
}

// PrintSetDeviceUsage displays the styled help text for set-device subcommand
func PrintSetDeviceUsage() {
	name := utils.ExecutableName()

	fmt.Println(Bold("Usage:"), name+" set-device [options] [vendor_id product_id]")
	fmt.Println()
	fmt.Println("Set the HID display and its geometry in the configuration file.")
	fmt.Println()
	fmt.Println(Muted("If vendor_id and product_id are provided, updates the config directly."))
	fmt.Println(Muted("Otherwise, asks for the device, size and pixel format interactively."))
	fmt.Println()

	fmt.Println(Bold("Arguments"))
	printOption("vendor_id ", "Device vendor ID (hex with 0x prefix or decimal)")
	printOption("product_id", "Device product ID (hex with 0x prefix or decimal)")
	fmt.Println()

	fmt.Println(Bold("Options"))
	printOption("-config string", "Path to configuration file (default \"config.yaml\")")
	printOption("-width int    ", "Display width in pixels, 0 for the device size")
	printOption("-height int   ", "Display height in pixels, 0 for the device size")
	printOption("-format string", "Pixel format, e.g. rgb565 or argb8888")
	fmt.Println()

	printExamples([]example{
		{name + " set-device", "Interactive selection"},
		{name + " set-device -width 160 -height 80 0x1234 0x5678", "Device and panel size"},
		{name + " set-device 0x1234 0x5678", "Direct specification"},
		{name + " set-device -config my.yaml", "Use different config"},
	})
}

// PrintRenderUsage displays the styled help text for the render subcommand
func PrintRenderUsage() {
	name := utils.ExecutableName()

	fmt.Println(Bold("Usage:"), name+" render [options] [script]")
	fmt.Println()
	fmt.Println("Replay protocol commands through the overlay and write the final frame.")
	fmt.Println()
	fmt.Println(Muted("Commands are read from the script file, or stdin when none is given."))
	fmt.Println(Muted("The overlay clock advances one update interval per tick."))
	fmt.Println()

	fmt.Println(Bold("Options"))
	printOption("-config string", "Path to configuration file (default \"config.yaml\")")
	printOption("-o string     ", "Output PNG file (default \"frame.png\")")
	printOption("-ticks int    ", "Frames to render after the script (default 40)")
	printOption("-terminal     ", "Also print the frame as colored blocks")
	fmt.Println()

	printExamples([]example{
		{name + " render demo.txt", "Render demo.txt to frame.png"},
		{"echo X1:hello | " + name + " render -o hello.png", "Render from stdin"},
	})
}

// PrintVersion displays the styled version information
func PrintVersion(version string) {
	versionTag := lipgloss.NewStyle().
		Foreground(ColorSuccess).
		Render("v" + version)

	fmt.Printf("%s %s\n", banner(), versionTag)
}

// PrintError displays a styled error message
func PrintError(message string) {
	fmt.Println(Error(message))
}

// PrintFatalError displays a styled fatal error message with context
func PrintFatalError(context, message string) {
	fmt.Println()
	fmt.Println(Error(context))
	fmt.Printf("  %s\n", Muted(message))
	fmt.Println()
}

// PrintRendered reports a frame written by the render subcommand.
func PrintRendered(path string, width, height int, frames uint64) {
	fmt.Println(Success("Frame written"))
	fmt.Printf("  %s %s\n", Muted("File:"), path)
	fmt.Printf("  %s %dx%d\n", Muted("Size:"), width, height)
	fmt.Printf("  %s %d\n", Muted("Frames:"), frames)
}
