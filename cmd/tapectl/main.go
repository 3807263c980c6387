package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/FoxDenHome/tapectl/drive"
	"github.com/FoxDenHome/tapectl/hotplug"
	"github.com/FoxDenHome/tapectl/labels"
	"github.com/FoxDenHome/tapectl/mam"
	"github.com/FoxDenHome/tapectl/scsi/dispatch"
	"github.com/FoxDenHome/tapectl/tools"
)

const DEFAULT_CONFIG_PATH = "tapectl.json"

var configPath string
var verbose bool
var config Config

func main() {
	root := newRootCommand()
	if err := root.Execute(); err != nil {
		log.Fatalf("%v", err)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "tapectl",
		Short:         "Control and monitor an LTO tape drive",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if verbose {
				log.SetLevel(log.DebugLevel)
			}

			loaded, err := loadConfig(configPath)
			if os.IsNotExist(err) && configPath == DEFAULT_CONFIG_PATH {
				log.Debugf("no config file at %s, using defaults", configPath)
				config = defaultConfig()
				return nil
			}
			if err != nil {
				return err
			}
			config = loaded
			return nil
		},
	}

	root.PersistentFlags().StringVarP(&configPath, "config", "c", DEFAULT_CONFIG_PATH, "path to the config file")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		newReadyCommand(),
		newIdentifyCommand(),
		newSerialCommand(),
		newBarcodeCommand(),
		newLoadCommand(),
		newEjectCommand(),
		newMountCommand(),
		newUnmountCommand(),
		newPositionCommand(),
		newSeekCommand(),
		newFormatCommand(),
		newCheckCommand(),
		newMonitorCommand(),
		newDecodeAttrCommand(),
	)
	return root
}

// buildDrive wires the configured drive with its retry policy, vendor
// tools and label store. The caller owns the returned close function.
func buildDrive() (*drive.TapeDrive, func(), error) {
	policy, err := config.retryPolicy()
	if err != nil {
		return nil, nil, err
	}

	var store *labels.Store
	if config.LabelDB != "" {
		store, err = labels.Open(config.LabelDB)
		if err != nil {
			return nil, nil, err
		}
	}

	d := drive.New(drive.Config{
		DevicePath: config.DriveDevice,
		MountPoint: config.TapeMount,
		Executor:   dispatch.New(policy),
		Tools:      tools.New(tools.NewRunner(), config.Tools),
		Store:      store,
	})

	closer := func() {
		if err := d.Close(); err != nil {
			log.Warnf("failed to close drive: %v", err)
		}
		if store != nil {
			if err := store.Close(); err != nil {
				log.Warnf("failed to close label store: %v", err)
			}
		}
	}
	return d, closer, nil
}

// runWithDrive handles the common lifecycle of one-shot drive commands:
// open, run under a signal-aware context, close.
func runWithDrive(fn func(ctx context.Context, d *drive.TapeDrive) error) error {
	d, closer, err := buildDrive()
	if err != nil {
		return err
	}
	defer closer()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return fn(ctx, d)
}

func newReadyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "ready",
		Short: "Report whether the drive has a ready medium",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithDrive(func(ctx context.Context, d *drive.TapeDrive) error {
				ready, err := d.Ready(ctx)
				if err != nil {
					return err
				}
				fmt.Println(ready)
				return nil
			})
		},
	}
}

func newIdentifyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "identify",
		Short: "Print the drive's INQUIRY identity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithDrive(func(ctx context.Context, d *drive.TapeDrive) error {
				identity, err := d.Identify(ctx)
				if err != nil {
					return err
				}
				fmt.Printf("vendor:   %s\n", identity.Vendor)
				fmt.Printf("product:  %s\n", identity.Product)
				fmt.Printf("revision: %s\n", identity.Revision)

				serial, err := d.DriveSerial(ctx)
				if err != nil {
					return err
				}
				fmt.Printf("serial:   %s\n", serial)
				return nil
			})
		},
	}
}

func newSerialCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serial",
		Short: "Print the loaded medium's serial number",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithDrive(func(ctx context.Context, d *drive.TapeDrive) error {
				serial, err := d.MediumSerial(ctx)
				if err != nil {
					return err
				}
				fmt.Println(serial)
				return nil
			})
		},
	}
}

func newBarcodeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "barcode",
		Short: "Print the loaded medium's barcode label",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithDrive(func(ctx context.Context, d *drive.TapeDrive) error {
				barcode, err := d.Barcode(ctx)
				if err != nil {
					return err
				}
				fmt.Println(barcode)
				return nil
			})
		},
	}
}

func newLoadCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "load",
		Short: "Load and thread the medium",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithDrive(func(ctx context.Context, d *drive.TapeDrive) error {
				return d.LoadMedium(ctx)
			})
		},
	}
}

func newEjectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "eject",
		Short: "Rewind and eject the medium",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithDrive(func(ctx context.Context, d *drive.TapeDrive) error {
				return d.EjectMedium(ctx)
			})
		},
	}
}

func newMountCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "mount",
		Short: "Mount the loaded medium's filesystem at the configured mount point",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithDrive(func(ctx context.Context, d *drive.TapeDrive) error {
				return d.Mount(ctx)
			})
		},
	}
}

func newUnmountCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "unmount",
		Short: "Unmount the medium's filesystem",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithDrive(func(ctx context.Context, d *drive.TapeDrive) error {
				return d.Unmount(ctx)
			})
		},
	}
}

func newPositionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "position",
		Short: "Print the current medium position",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithDrive(func(ctx context.Context, d *drive.TapeDrive) error {
				pos, err := d.Position(ctx)
				if err != nil {
					return err
				}
				fmt.Printf("partition: %d\n", pos.Partition)
				fmt.Printf("object:    %d\n", pos.LogicalObject)
				if pos.BeginningOfPartition {
					fmt.Println("at beginning of partition")
				}
				if pos.EndOfData {
					fmt.Println("at end of data")
				}
				return nil
			})
		},
	}
}

func newSeekCommand() *cobra.Command {
	var partition uint8
	cmd := &cobra.Command{
		Use:   "seek <logical-object>",
		Short: "Position the medium to a logical object",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			object, err := strconv.ParseUint(args[0], 0, 64)
			if err != nil {
				return fmt.Errorf("invalid logical object %q: %v", args[0], err)
			}
			return runWithDrive(func(ctx context.Context, d *drive.TapeDrive) error {
				return d.Seek(ctx, partition, object)
			})
		},
	}
	cmd.Flags().Uint8VarP(&partition, "partition", "p", 0, "target partition")
	return cmd
}

func newFormatCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "format <barcode>",
		Short: "Format the loaded medium and label it with the given barcode",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithDrive(func(ctx context.Context, d *drive.TapeDrive) error {
				record, err := d.FormatWithLabel(ctx, args[0])
				if err != nil {
					return err
				}
				log.WithField("duration", record.Duration).Info("format finished")
				return nil
			})
		},
	}
}

func newCheckCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Run the vendor consistency check on the loaded medium",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithDrive(func(ctx context.Context, d *drive.TapeDrive) error {
				record, err := d.Check(ctx)
				if err != nil {
					return err
				}
				_, _ = os.Stdout.Write(record.Stdout)
				return nil
			})
		},
	}
}

func newMonitorCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "monitor",
		Short: "Watch device presence and keep the drive handle in sync",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			interval, err := config.pollInterval()
			if err != nil {
				return err
			}

			d, closer, err := buildDrive()
			if err != nil {
				return err
			}

			monitor := hotplug.New(hotplug.DefaultLister(), interval)
			monitor.Subscribe(d.HandleEvent)

			monitor.Start()
			log.WithField("device", d.Path()).Info("monitoring device presence")

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			<-ctx.Done()

			// Enumeration and dispatch must be fully quiesced before the
			// handle and store go away underneath a listener.
			monitor.Stop()
			closer()
			return nil
		},
	}
}

func newDecodeAttrCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "decode-attr <attribute-id> <hex-bytes>",
		Short: "Run the adaptive attribute decoder over raw bytes",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseUint(args[0], 0, 16)
			if err != nil {
				return fmt.Errorf("invalid attribute id %q: %v", args[0], err)
			}
			raw, err := hex.DecodeString(args[1])
			if err != nil {
				return fmt.Errorf("invalid hex bytes: %v", err)
			}

			record := mam.Decode(mam.AttributeID(id), 0, raw)
			fmt.Printf("attribute: %s\n", record.ID)
			fmt.Printf("raw:       %s\n", record.RawHex)
			if record.Unparsed {
				fmt.Println("value:     <unparsed>")
				return nil
			}
			fmt.Printf("value:     %s\n", record.Value)
			fmt.Printf("strategy:  %s\n", record.Strategy)
			return nil
		},
	}
}
