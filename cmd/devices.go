package cmd

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/interrupt-sim/interrupt-sim/sim/devices"
)

var (
	listDevices deviceSource
	listCosts   costFlags
	listAsYAML  bool
)

// devicesCmd shows the device table the simulator would use.
var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "Print the device table with vector positions and service costs",
	Long: "Print the loaded device table. With --yaml the table is written as a YAML device " +
		"config to stdout, which converts the vector/device text tables for --device-config.",
	Run: func(cmd *cobra.Command, args []string) {
		table, err := listDevices.load()
		if err != nil {
			logrus.Fatalf("unable to load device table; %v", err)
		}
		if listAsYAML {
			data, err := yaml.Marshal(devices.ToConfig(table))
			if err != nil {
				logrus.Fatalf("YAML marshal failed: %v", err)
			}
			fmt.Print(string(data))
			return
		}
		costs, err := listCosts.resolve(cmd.Flags())
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		printDevices(os.Stdout, table, costs)
	},
}

func init() {
	devicesCmd.Flags().StringVar(&listDevices.VectorsPath, "vectors", "", "Vector table file (one ISR address per line)")
	devicesCmd.Flags().StringVar(&listDevices.DelaysPath, "devices", "", "Device table file (one I/O delay in ms per line)")
	devicesCmd.Flags().StringVar(&listDevices.DeviceConfig, "device-config", "", "YAML device table")
	devicesCmd.Flags().BoolVar(&listAsYAML, "yaml", false, "Write the table as YAML device config instead")
	listCosts.register(devicesCmd.Flags())
}
