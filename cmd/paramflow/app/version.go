package app

import (
	"fmt"
	"io"

	"github.com/Masterminds/semver/v3"
	"github.com/phillarmonic/figlet/figletlib"
	"github.com/spf13/cobra"
)

func (a *App) createVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return ShowVersion(cmd.OutOrStdout(), a.version, a.commit, a.date)
		},
	}
}

// ShowVersion displays version information. The ASCII art banner always
// goes to stdout.
func ShowVersion(w io.Writer, version, commit, date string) error {
	loader := figletlib.NewEmbededLoader()
	font, err := loader.GetFontByName("standard")
	if err != nil {
		return err
	}

	startColor, _ := figletlib.ParseColor("#00FF95")
	endColor, _ := figletlib.ParseColor("#00C2FF")
	gradientConfig := figletlib.ColorConfig{
		Mode:       figletlib.ColorModeGradient,
		StartColor: startColor,
		EndColor:   endColor,
	}

	fmt.Println("")
	figletlib.PrintColoredMsg("paramflow", font, 80, font.Settings(), "left", gradientConfig)

	fmt.Fprintln(w, "Typed, conditional workflow parameters")
	fmt.Fprintln(w)

	if v, err := semver.NewVersion(version); err == nil {
		fmt.Fprintf(w, "Version %s\n", v.String())
	} else {
		fmt.Fprintf(w, "Version %s\n", version)
	}
	if commit != "unknown" {
		fmt.Fprintf(w, "commit: %s\n", commit)
	}
	if date != "unknown" {
		fmt.Fprintf(w, "built: %s\n", date)
	}
	return nil
}
