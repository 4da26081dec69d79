package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/safing/audioicons/base/log"
	"github.com/safing/audioicons/service/deviceicon"
)

var extractOpts struct {
	flow  string
	large bool
	out   string
}

func init() {
	rootCmd.AddCommand(extractCmd)

	flags := extractCmd.Flags()
	flags.StringVar(&extractOpts.flow, "flow", "render", "data flow of the device [render|capture]")
	flags.BoolVar(&extractOpts.large, "large", false, "extract the large icon")
	flags.StringVarP(&extractOpts.out, "out", "o", "icon.png", "output file, .png or .ico")
}

var extractCmd = &cobra.Command{
	Use:   "extract <specifier>",
	Short: "Resolve a device icon specifier and save the icon",
	Long: `Resolve a device icon specifier and save the icon.

The specifier is either a path to an .ico file or a "container,index"
reference, as in "%windir%\system32\mmres.dll,-3004". If the icon cannot be
resolved, the default icon of the data flow is saved instead.`,
	Args: cobra.ExactArgs(1),
	RunE: extract,
}

func extract(cmd *cobra.Command, args []string) error {
	flow, ok := deviceicon.ParseDataFlow(extractOpts.flow)
	if !ok || flow == deviceicon.All {
		return fmt.Errorf("invalid data flow %q", extractOpts.flow)
	}

	log.Debugf("deviceicon: resolving %s (flow=%s, large=%v)", args[0], flow, extractOpts.large)
	icon := provider.GetIcon(deviceicon.Endpoint{
		Icon: args[0],
		Flow: flow,
	}, extractOpts.large)
	if icon.IsDefault() {
		log.Warningf("deviceicon: using default %s icon for %s", flow, args[0])
	}

	var (
		data []byte
		err  error
	)
	switch strings.ToLower(filepath.Ext(extractOpts.out)) {
	case ".png":
		data, err = icon.PNG()
	case ".ico":
		data, err = icon.ICO()
	default:
		return errors.New("unsupported output format, use .png or .ico")
	}
	if err != nil {
		return err
	}

	if err := os.WriteFile(extractOpts.out, data, 0o644); err != nil { //nolint:gosec
		return fmt.Errorf("failed to write icon: %w", err)
	}
	log.Infof("deviceicon: saved %s (%dpx, default=%v)", extractOpts.out, icon.Size(), icon.IsDefault())
	return nil
}
