package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"

	"github.com/peteraglen/restconsumer"
	"github.com/peteraglen/restconsumer/internal/config"
)

var callCmd = &cobra.Command{
	Use:   "call VERB [member|member:value ...] [key=value ...]",
	Short: "Issue a call against a member of the API",
	Example: `  restcall call get widget:7 parts
  restcall call post chat_postMessage channel=#ops text="deploy done"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := call(cmd.Context(), cmd.OutOrStdout(), cfg, registry, args); err != nil {
			return err
		}
		if showMetrics {
			return writeMetrics(cmd.ErrOrStderr(), registry)
		}
		return nil
	},
}

func call(ctx context.Context, out io.Writer, c *config.AppConfig, reg prometheus.Registerer, args []string) error {
	verb, err := restconsumer.ParseVerb(args[0])
	if err != nil {
		return err
	}

	segments, params, err := splitArgs(args[1:])
	if err != nil {
		return err
	}

	fetcher, err := newFetcher(c, reg)
	if err != nil {
		return err
	}

	root, err := restconsumer.New(c.Endpoint, c.API, fetcher)
	if err != nil {
		return err
	}

	target, err := navigate(root, segments)
	if err != nil {
		return err
	}

	res, err := target.Call(ctx, verb, params)
	if err != nil {
		return fmt.Errorf("%s %s: %w", verb, target.Trail(), err)
	}

	return writeResult(out, res)
}

// splitArgs separates member segments from key=value parameters. Parameters
// must follow the last segment.
func splitArgs(args []string) ([]string, restconsumer.Params, error) {
	var segments []string
	var params restconsumer.Params

	for _, arg := range args {
		key, value, isParam := strings.Cut(arg, "=")
		if !isParam {
			if len(params) > 0 {
				return nil, nil, fmt.Errorf("member %q follows parameters", arg)
			}
			segments = append(segments, arg)
			continue
		}
		if key == "" {
			return nil, nil, fmt.Errorf("parameter %q has no name", arg)
		}
		params = params.With(key, value)
	}

	return segments, params, nil
}

// navigate follows segments from root. "name" selects a property and
// "name:value" resolves a parameterized member.
func navigate(root *restconsumer.Consumer, segments []string) (*restconsumer.Consumer, error) {
	current := root
	for _, segment := range segments {
		name, value, hasValue := strings.Cut(segment, ":")

		var err error
		if hasValue {
			current, err = current.Resolve(name, value)
		} else {
			current, err = current.Resolve(name)
		}
		if err != nil {
			return nil, err
		}
	}
	return current, nil
}

func writeResult(out io.Writer, res *restconsumer.Result) error {
	value, ok := res.Structured()
	if !ok {
		_, err := fmt.Fprintln(out, res.Raw())
		return err
	}

	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(value)
}

func writeMetrics(out io.Writer, gatherer prometheus.Gatherer) error {
	families, err := gatherer.Gather()
	if err != nil {
		return fmt.Errorf("failed to gather metrics: %w", err)
	}

	for _, family := range families {
		if _, err := expfmt.MetricFamilyToText(out, family); err != nil {
			return err
		}
	}
	return nil
}
