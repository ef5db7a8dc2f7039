package main

import (
	"path/filepath"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "funee",
	Short: "A demand-driven bundler with compile-time macro expansion",
	Long: `funee resolves a program's imports lazily, starting from a single
entry export, and expands compile-time macros (createMacro) before
emitting a single JavaScript file.`,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: .funee.yaml in the current directory)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose logging output")
	_ = viper.BindPFlag("configFile", rootCmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	rootCmd.AddCommand(buildCmd)
}

// initConfig layers a .funee.yaml file under viper's other sources (flags,
// then env, then config file, then defaults), the same layering order
// bennypowers-cem's cmd/root.go and jinterlante1206-AleutianLocal's config
// loader both use.
func initConfig() {
	cfgFile := viper.GetString("configFile")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".funee")
	}

	if viper.GetBool("verbose") {
		pterm.EnableDebugMessages()
	}

	if err := viper.ReadInConfig(); err == nil {
		pterm.Debug.Println("Using config file: ", viper.ConfigFileUsed())
	}

	viper.AutomaticEnv()
}

// Execute runs the root command; extracted to its own function so future
// test code can invoke it without going through main().
func Execute() error {
	return rootCmd.Execute()
}

func expandPath(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	return filepath.Abs(path)
}
