package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	configName = ".dgresidual"
	envPrefix  = "DGRESIDUAL"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "dgresidual",
	Short: "Discontinuous Galerkin residual and derivative assembly",
	Long: `
Assembles the discontinuous Galerkin residual of a conservation law on a
hypercube mesh, with its exact first derivatives with respect to the
solution and the geometry nodes, or the second derivatives of the dual
weighted residual.

dgresidual assemble -I input.yaml --dRdW`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the command line and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default is $HOME/"+configName+".yaml)")
	rootCmd.PersistentFlags().String("logFormat", "text", "log format: text or json")
	rootCmd.PersistentFlags().String("logLevel", "warn", "log level: debug, info, warn, error")
	for _, name := range []string{"logFormat", "logLevel"} {
		if err := viper.BindPFlag(name, rootCmd.PersistentFlags().Lookup(name)); err != nil {
			panic(err)
		}
	}
}

// initConfig reads the config file and the DGRESIDUAL_ environment. A
// missing config file is not an error.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := homedir.Dir()
		if err == nil {
			viper.AddConfigPath(home)
		}
		viper.SetConfigName(configName)
		viper.SetConfigType("yaml")
	}
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	if err := viper.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound || cfgFile != "" {
			color.New(color.FgYellow).Fprintf(os.Stderr, "config: %v\n", err)
		}
		return
	}
	if viper.GetString("logLevel") == "debug" {
		fmt.Fprintf(os.Stderr, "using config file: %s\n", viper.ConfigFileUsed())
	}
}
