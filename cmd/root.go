package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "polycsg",
	Short: "Constructive solid geometry on polygon meshes",
	Long: `polycsg combines spheres, cubes and cylinders with BSP tree boolean
operations and writes the result as STL.

Shapes are written as KIND:ARGS:
  sphere:x,y,z,r
  cube:x,y,z,rx,ry,rz
  cylinder:x1,y1,z1,x2,y2,z2,r`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default .polycsg.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().IntP("resolution", "r", 0, "segments for spheres and cylinders (default from config)")
	rootCmd.PersistentFlags().StringP("output", "o", "", "STL output path (default from config)")
}

func initConfig() {
	if cfgFile, _ := rootCmd.Flags().GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName(".polycsg")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
	}

	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("resolution", rootCmd.PersistentFlags().Lookup("resolution"))
	_ = viper.BindPFlag("output", rootCmd.PersistentFlags().Lookup("output"))

	viper.SetEnvPrefix("POLYCSG")
	viper.AutomaticEnv()

	// It's fine if no config file is found; we use defaults.
	_ = viper.ReadInConfig()
}
