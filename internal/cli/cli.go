package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/vk/amalgam/internal/app"
)

// EnvPrefix prefixes environment variables that override flags, such as
// AMALGAM_LOG_LEVEL.
const EnvPrefix = "AMALGAM"

const (
	keyManifest       = "manifest"
	keyLogLevel       = "log-level"
	keyLogFormat      = "log-format"
	keyRelayURL       = "relay-url"
	keyRelayNamespace = "relay-namespace"
	keyRelayTimeout   = "relay-timeout"
	keyProvide        = "provide"
	keyPrintMetrics   = "print-metrics"
	keyConfig         = "config"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Execute runs the command line against args, writing to outW.
func Execute(ctx context.Context, outW io.Writer, args []string) error {
	cmd := NewRootCommand(outW)
	cmd.SetArgs(args)
	return cmd.ExecuteContext(ctx)
}

// NewRootCommand builds the amalgam command tree. Each call returns an
// independent tree with its own viper instance.
func NewRootCommand(outW io.Writer) *cobra.Command {
	v := viper.New()

	root := &cobra.Command{
		Use:   "amalgam",
		Short: "Compose types from HCL manifests and call their methods",
		Long: `amalgam composes types declared in HCL manifests out of function,
contract and type blocks, and invokes their methods from the command line.

Every flag can also be set through an AMALGAM_* environment variable or an
amalgam.yaml config file.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return loadConfig(v, cmd)
		},
	}
	root.SetOut(outW)
	root.SetErr(outW)

	flags := root.PersistentFlags()
	flags.StringP(keyManifest, "m", "", "Path to a manifest file or a directory of .hcl files.")
	flags.String(keyLogLevel, "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	flags.String(keyLogFormat, "text", "Log output format. Options: 'text' or 'json'.")
	flags.String(keyRelayURL, "", "socket.io endpoint that receives composition and call events.")
	flags.String(keyRelayNamespace, "", "socket.io namespace for relayed events.")
	flags.Duration(keyRelayTimeout, 0, "How long to wait for the relay connection (0 uses the default).")
	flags.StringToString(keyProvide, nil, "Dependencies to register as token=value pairs.")
	flags.String(keyConfig, "", "Config file (default: ./amalgam.yaml when present).")

	call := &cobra.Command{
		Use:   "call TYPE METHOD [ARGS...]",
		Short: "Compose TYPE and call METHOD on a new instance",
		Long: `Compose TYPE from the manifest, create an instance and call METHOD with
ARGS. Arguments are read as HCL literals: 42 is a number, true a bool and
["a", "b"] a list; anything else is passed as a string.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApp(cmd, v, outW, args[0], args[1], args[2:])
		},
	}
	call.Flags().Bool(keyPrintMetrics, false, "Print Prometheus metrics after the call.")

	types := &cobra.Command{
		Use:   "types",
		Short: "List the types declared in the manifest",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runApp(cmd, v, outW, "", "", nil)
		},
	}

	root.AddCommand(call, types)
	return root
}

// loadConfig binds flags, environment variables and the optional config
// file into v. Flags set on the command line win over the environment,
// which wins over the file.
func loadConfig(v *viper.Viper, cmd *cobra.Command) error {
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("bind flags: %w", err)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if path := v.GetString(keyConfig); path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("amalgam")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return &ExitError{Code: 2, Message: fmt.Sprintf("read config: %v", err)}
	}
	return nil
}

func runApp(cmd *cobra.Command, v *viper.Viper, outW io.Writer, typeName, method string, args []string) error {
	cfg, err := app.NewConfig(app.Config{
		ManifestPath:   v.GetString(keyManifest),
		TypeName:       typeName,
		Method:         method,
		Args:           args,
		Dependencies:   v.GetStringMapString(keyProvide),
		LogFormat:      strings.ToLower(v.GetString(keyLogFormat)),
		LogLevel:       strings.ToLower(v.GetString(keyLogLevel)),
		RelayURL:       v.GetString(keyRelayURL),
		RelayNamespace: v.GetString(keyRelayNamespace),
		RelayTimeout:   v.GetDuration(keyRelayTimeout),
		PrintMetrics:   v.GetBool(keyPrintMetrics),
	})
	if err != nil {
		return &ExitError{Code: 2, Message: err.Error()}
	}

	a, err := app.NewApp(outW, cfg)
	if err != nil {
		return err
	}
	return a.Run(cmd.Context())
}
