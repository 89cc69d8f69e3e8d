package main

import (
	"encoding/binary"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/davidrau-renesas-opensource/sof/adapter"
	"github.com/davidrau-renesas-opensource/sof/comp"
	"github.com/davidrau-renesas-opensource/sof/metric"
	"github.com/davidrau-renesas-opensource/sof/pipeline"
	"github.com/davidrau-renesas-opensource/sof/registry"
	"github.com/davidrau-renesas-opensource/sof/stream"
	"github.com/davidrau-renesas-opensource/sof/volume"
	"github.com/davidrau-renesas-opensource/sof/wav"
)

func init() {
	processCmd.Flags().StringP("in", "i", "", "input wav file (required)")
	processCmd.Flags().StringP("out", "o", "", "output wav file (required)")
	processCmd.Flags().Float64P("gain", "g", 1.0, "linear gain applied to the stream")
	processCmd.Flags().IntP("period", "p", 48, "pipeline period in frames")
	processCmd.Flags().String("metrics-addr", "", "serve prometheus metrics on this address while processing")
	processCmd.MarkFlagRequired("in")
	processCmd.MarkFlagRequired("out")
	viper.BindPFlag("gain", processCmd.Flags().Lookup("gain"))
	viper.BindPFlag("period_frames", processCmd.Flags().Lookup("period"))
	viper.BindPFlag("metrics_addr", processCmd.Flags().Lookup("metrics-addr"))
	rootCmd.AddCommand(processCmd)
}

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Process a wav file through the gain pipeline",
	RunE: func(cmd *cobra.Command, args []string) error {
		in, _ := cmd.Flags().GetString("in")
		out, _ := cmd.Flags().GetString("out")
		return process(in, out, viper.GetFloat64("gain"),
			viper.GetInt("period_frames"), viper.GetString("metrics_addr"))
	},
}

func process(in, out string, gain float64, periodFrames int, metricsAddr string) error {
	params, err := wav.Format(in)
	if err != nil {
		return err
	}

	var metrics *metric.Metrics
	if metricsAddr != "" {
		promReg := prometheus.NewRegistry()
		metrics = metric.New(promReg)
		go http.ListenAndServe(metricsAddr, promhttp.HandlerFor(promReg, promhttp.HandlerOpts{}))
	}

	reg := registry.New()
	reg.Register(&registry.DriverFunc{
		AlgorithmID: volume.AlgorithmID,
		Create: func(cfg adapter.Config) (*adapter.Adapter, error) {
			return adapter.New(cfg, volume.New())
		},
	})

	src := wav.NewSource(in)
	srcAd, err := adapter.New(adapter.Config{
		ID: "wav-source", PeriodFrames: periodFrames, Metrics: metrics,
	}, src)
	if err != nil {
		return err
	}
	volAd, err := reg.Create(volume.AlgorithmID, adapter.Config{
		ID: "gain", PeriodFrames: periodFrames, Metrics: metrics,
	})
	if err != nil {
		return err
	}
	snkAd, err := adapter.New(adapter.Config{
		ID: "wav-sink", PeriodFrames: periodFrames, Metrics: metrics,
	}, wav.NewSink(out))
	if err != nil {
		return err
	}

	periodBytes := params.PeriodBytes(periodFrames)
	upstream := stream.NewBuffer(2*periodBytes, params)
	downstream := stream.NewBuffer(2*periodBytes, params)
	if err := pipeline.Link(srcAd, volAd, upstream); err != nil {
		return err
	}
	if err := pipeline.Link(volAd, snkAd, downstream); err != nil {
		return err
	}
	for _, a := range []*adapter.Adapter{srcAd, volAd, snkAd} {
		if err := a.Params(params); err != nil {
			return err
		}
	}

	if gain != 1.0 {
		var blob [4]byte
		binary.LittleEndian.PutUint32(blob[:], uint32(gain*volume.Unity))
		cdata := adapter.CtrlData{
			Type:     adapter.CtrlBinary,
			ABI:      adapter.CurrentABI,
			NumElems: 4,
			Data:     blob[:],
		}
		if err := volAd.Cmd(adapter.CmdSetData, &cdata); err != nil {
			return err
		}
	}

	line := pipeline.New(srcAd, volAd, snkAd)
	if err := line.Prepare(); err != nil {
		return err
	}
	if err := line.Trigger(comp.TriggerStart); err != nil {
		line.Reset()
		return err
	}

	for {
		if err := line.Copy(); err != nil {
			line.Trigger(comp.TriggerStop)
			line.Reset()
			return err
		}
		if src.Drained() && upstream.Available() == 0 && downstream.Available() == 0 {
			break
		}
	}

	frames := src.Position()
	if err := line.Trigger(comp.TriggerStop); err != nil {
		return err
	}
	if err := line.Reset(); err != nil {
		return err
	}
	line.Free()

	fmt.Printf("processed %d frames from %s to %s\n", frames, in, out)
	return nil
}
