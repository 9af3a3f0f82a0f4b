package ui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// MaxDimension bounds the display size accepted by the setup form.
const MaxDimension = 4096

// DeviceInfo describes a HID display found on the bus.
type DeviceInfo struct {
	VendorID     uint16
	ProductID    uint16
	Manufacturer string
	Product      string
	Path         string
}

// DisplaySetup is what set-device writes back: the device to drive and the
// panel geometry frames are composed for. A zero width or height takes the
// size from the sink.
type DisplaySetup struct {
	Device      DeviceInfo
	Width       int
	Height      int
	PixelFormat string
}

// setupModel wraps the huh form in Bubble Tea so esc cancels it.
type setupModel struct {
	form    *huh.Form
	aborted bool
}

func (m setupModel) Init() tea.Cmd {
	return m.form.Init()
}

func (m setupModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "ctrl+c", "esc":
			m.aborted = true
			return m, tea.Quit
		}
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}
	if m.form.State == huh.StateCompleted {
		return m, tea.Quit
	}
	return m, cmd
}

func (m setupModel) View() string {
	if m.form.State == huh.StateCompleted {
		return ""
	}
	return m.form.View()
}

// SetupDisplay asks which display to drive and how large it is, starting
// from current. With no devices only the geometry is asked for and
// current.Device is kept. It returns nil when the user cancels.
func SetupDisplay(devices []DeviceInfo, current DisplaySetup, formats []string) (*DisplaySetup, error) {
	selected := deviceIndex(devices, current.Device)
	width := strconv.Itoa(current.Width)
	height := strconv.Itoa(current.Height)
	format := current.PixelFormat

	var groups []*huh.Group
	if len(devices) > 0 {
		options := make([]huh.Option[int], len(devices))
		for i, d := range devices {
			options[i] = huh.NewOption(deviceLabel(d), i)
		}
		groups = append(groups, huh.NewGroup(
			huh.NewSelect[int]().
				Title("Select HID Display").
				Description("Choose the display the overlay is sent to (esc to cancel)").
				Options(options...).
				Value(&selected),
		))
	}
	groups = append(groups, huh.NewGroup(
		huh.NewInput().
			Title("Width").
			Description("Pixels, 0 takes the size from the device").
			Value(&width).
			Validate(validateDimension),
		huh.NewInput().
			Title("Height").
			Value(&height).
			Validate(validateDimension),
		huh.NewSelect[string]().
			Title("Pixel Format").
			Options(huh.NewOptions(formats...)...).
			Value(&format),
	))

	form := huh.NewForm(groups...).WithTheme(customTheme()).WithShowHelp(false)
	final, err := tea.NewProgram(setupModel{form: form}).Run()
	if err != nil {
		return nil, err
	}
	if final.(setupModel).aborted {
		return nil, nil
	}

	setup := current
	if len(devices) > 0 {
		setup.Device = devices[selected]
	}
	// Both fields passed validation.
	setup.Width, _ = parseDimension(width)
	setup.Height, _ = parseDimension(height)
	setup.PixelFormat = format
	return &setup, nil
}

// parseDimension reads a width or height in pixels.
func parseDimension(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, errors.New("enter a whole number of pixels")
	}
	if n < 0 || n > MaxDimension {
		return 0, fmt.Errorf("must be between 0 and %d", MaxDimension)
	}
	return n, nil
}

func validateDimension(s string) error {
	_, err := parseDimension(s)
	return err
}

// deviceIndex finds d in devices by vendor and product ID, 0 when absent.
func deviceIndex(devices []DeviceInfo, d DeviceInfo) int {
	for i, c := range devices {
		if c.VendorID == d.VendorID && c.ProductID == d.ProductID {
			return i
		}
	}
	return 0
}

func deviceLabel(d DeviceInfo) string {
	return fmt.Sprintf("%s  %s", formatID(d.VendorID, d.ProductID), formatDeviceName(d))
}

// formatDeviceName creates a readable name for the device
func formatDeviceName(d DeviceInfo) string {
	name := d.Product
	if name == "" {
		name = "Unknown Device"
	}
	if d.Manufacturer != "" {
		name = d.Manufacturer + " " + name
	}
	return name
}

// geometryLabel describes the configured panel, e.g. "320x40 rgb565".
func geometryLabel(width, height int, format string) string {
	size := fmt.Sprintf("%dx%d", width, height)
	if width == 0 || height == 0 {
		size = "size from device"
	}
	if format == "" {
		return size
	}
	return size + " " + format
}

func deviceTable(devices []DeviceInfo) *table.Table {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(MutedStyle).
		Headers("ID", "DEVICE", "PATH").
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return TableHeaderStyle
			case col == 0:
				return DeviceIDStyle.Padding(0, 1)
			case col == 2:
				return DevicePathStyle.Padding(0, 1)
			default:
				return DeviceNameStyle.Padding(0, 1)
			}
		})
	for _, d := range devices {
		t.Row(fmt.Sprintf("0x%04X:0x%04X", d.VendorID, d.ProductID), formatDeviceName(d), d.Path)
	}
	return t
}

// PrintDeviceList displays a table of HID devices
func PrintDeviceList(devices []DeviceInfo) {
	if len(devices) == 0 {
		fmt.Println(Warning("No HID devices found"))
		return
	}

	fmt.Println()
	fmt.Println(Title("HID Displays"))
	fmt.Println(Muted(fmt.Sprintf("Found %d device(s)", len(devices))))
	fmt.Println(deviceTable(devices))
	fmt.Println()
}

// PrintDisplaySaved shows what set-device wrote. created is true when the
// config file did not exist before.
func PrintDisplaySaved(configPath string, s DisplaySetup, created bool) {
	msg := "Display settings updated"
	if created {
		msg = "Display configuration created"
	}
	fmt.Println()
	fmt.Println(Success(msg))
	fmt.Println()
	fmt.Printf("  %s %s\n", Muted("Config: "), configPath)
	fmt.Printf("  %s %s\n", Muted("Device: "), formatID(s.Device.VendorID, s.Device.ProductID))
	fmt.Printf("  %s %s\n", Muted("Display:"), geometryLabel(s.Width, s.Height, s.PixelFormat))
	fmt.Println()
}

func formatID(vendorID, productID uint16) string {
	return DeviceIDStyle.Render(fmt.Sprintf("0x%04X:0x%04X", vendorID, productID))
}

// customTheme returns a custom huh theme matching our style palette
func customTheme() *huh.Theme {
	t := huh.ThemeBase()

	t.Focused.Title = t.Focused.Title.Foreground(ColorPrimary).Bold(true)
	t.Focused.Description = t.Focused.Description.Foreground(ColorMuted)
	t.Focused.SelectedOption = t.Focused.SelectedOption.Foreground(ColorPrimary)
	t.Focused.UnselectedOption = t.Focused.UnselectedOption.Foreground(ColorText)
	t.Focused.SelectSelector = t.Focused.SelectSelector.Foreground(ColorPrimary)
	t.Focused.TextInput.Cursor = t.Focused.TextInput.Cursor.Foreground(ColorPrimary)
	t.Focused.ErrorMessage = t.Focused.ErrorMessage.Foreground(ColorError)

	return t
}
