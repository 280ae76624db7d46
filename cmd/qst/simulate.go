package main

import (
	"context"
	"fmt"
	"os"
	"syscall"

	"github.com/google/uuid"
	"github.com/oklog/run"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/qst-team/qst-engine/core"
	"github.com/qst-team/qst-engine/estimation"
	"github.com/qst-team/qst-engine/geometry"
	"github.com/qst-team/qst-engine/mitig"
	"github.com/qst-team/qst-engine/qobj"
	"github.com/qst-team/qst-engine/tomo"
)

const SIMULATION_SETTING_KEY = "simulate"

// SimulationSetting configures one tomography session. It lives under
// [com.simulate] in the setting file.
type SimulationSetting struct {
	NQubits       int                       `toml:"n_qubits"`
	Bloch         []float64                 `toml:"bloch"`
	NMeasurements int64                     `toml:"n_measurements"`
	WarmRounds    int                       `toml:"warm_rounds"`
	Physical      bool                      `toml:"physical"`
	Trials        int                       `toml:"trials"`
	Observables   []estimation.Observable   `toml:"observables"`
	ReadoutErrors []mitig.QubitReadoutError `toml:"readout_errors"`
}

func NewSimulationSetting() SimulationSetting {
	return SimulationSetting{
		NQubits:       1,
		Bloch:         []float64{0.5, 0.5, 0, 0},
		NMeasurements: 100000,
		WarmRounds:    0,
		Physical:      true,
		Trials:        20,
	}
}

func (s SimulationSetting) validate() error {
	var err error
	if s.NQubits < 1 {
		err = multierr.Append(err, fmt.Errorf("n_qubits must be positive, got %d", s.NQubits))
	} else if len(s.Bloch) != 1<<(2*s.NQubits) {
		err = multierr.Append(err, fmt.Errorf("bloch length %d does not match %d qubits",
			len(s.Bloch), s.NQubits))
	}
	if s.NMeasurements < 1 {
		err = multierr.Append(err, fmt.Errorf("n_measurements must be positive, got %d", s.NMeasurements))
	}
	if s.WarmRounds < 0 {
		err = multierr.Append(err, fmt.Errorf("warm_rounds must not be negative, got %d", s.WarmRounds))
	}
	if s.Trials < 1 {
		err = multierr.Append(err, fmt.Errorf("trials must be positive, got %d", s.Trials))
	}
	if len(s.ReadoutErrors) != 0 && len(s.ReadoutErrors) != s.NQubits {
		err = multierr.Append(err, fmt.Errorf("got %d readout errors for %d qubits",
			len(s.ReadoutErrors), s.NQubits))
	}
	return err
}

// TODO: decode component settings into typed structs directly instead of
// walking the toml maps by hand.
func loadSimulationSetting() SimulationSetting {
	setting := NewSimulationSetting()
	raw, ok := core.GetComponentSetting(SIMULATION_SETTING_KEY)
	if !ok {
		zap.L().Debug("simulation setting is not set, using defaults")
		return setting
	}
	mapped, ok := raw.(map[string]interface{})
	if !ok {
		zap.L().Warn("simulation setting has an unexpected shape, using defaults")
		return setting
	}
	if v, ok := mapped["n_qubits"].(int64); ok {
		setting.NQubits = int(v)
	}
	if v, ok := mapped["n_measurements"].(int64); ok {
		setting.NMeasurements = v
	}
	if v, ok := mapped["warm_rounds"].(int64); ok {
		setting.WarmRounds = int(v)
	}
	if v, ok := mapped["physical"].(bool); ok {
		setting.Physical = v
	}
	if v, ok := mapped["trials"].(int64); ok {
		setting.Trials = int(v)
	}
	if v, ok := mapped["bloch"].([]interface{}); ok {
		bloch := make([]float64, 0, len(v))
		for _, e := range v {
			switch f := e.(type) {
			case float64:
				bloch = append(bloch, f)
			case int64:
				bloch = append(bloch, float64(f))
			}
		}
		setting.Bloch = bloch
	}
	if v, ok := mapped["observables"].([]map[string]interface{}); ok {
		for _, o := range v {
			obs := estimation.Observable{Coeff: 1}
			if p, ok := o["pauli"].(string); ok {
				obs.Pauli = p
			}
			if c, ok := o["coeff"].(float64); ok {
				obs.Coeff = c
			}
			setting.Observables = append(setting.Observables, obs)
		}
	}
	if v, ok := mapped["readout_errors"].([]map[string]interface{}); ok {
		for _, o := range v {
			re := mitig.QubitReadoutError{}
			if p, ok := o["prob_meas1_prep0"].(float64); ok {
				re.ProbMeas1Prep0 = p
			}
			if p, ok := o["prob_meas0_prep1"].(float64); ok {
				re.ProbMeas0Prep1 = p
			}
			setting.ReadoutErrors = append(setting.ReadoutErrors, re)
		}
	}
	return setting
}

func setUpSession() (SimulationSetting, error) {
	core.ResetSetting()
	if _, err := os.Stat(app.Conf.SettingPath); err == nil {
		if err := core.ParseSettingFromPath(app.Conf.SettingPath); err != nil {
			return SimulationSetting{}, err
		}
	} else {
		zap.L().Debug(fmt.Sprintf("setting file %s is not found, using defaults", app.Conf.SettingPath))
	}
	core.SetVersion(app.Conf, versionByBuildFlag)
	setting := loadSimulationSetting()
	if err := setting.validate(); err != nil {
		return SimulationSetting{}, err
	}
	return setting, nil
}

type simulateCmd struct{}

func newSimulateCmd() *simulateCmd {
	return &simulateCmd{}
}

func (c *simulateCmd) Execute(args []string) error {
	logger := setZap(app.Conf)
	defer logger.Sync()

	setting, err := setUpSession()
	if err != nil {
		zap.L().Error(fmt.Sprintf("failed to set up the session. Reason:%s", err))
		return err
	}
	container, err := app.provideDIContainer()
	if err != nil {
		zap.L().Error(fmt.Sprintf("failed to build the DI container. Reason:%s", err))
		return err
	}
	return container.Invoke(
		func(dst geometry.DistanceFunc, est *estimatorChoice, sch *schemeChoice) error {
			_, err := runSession(setting, dst, est.method, sch.povm, app.Conf.Seed)
			return err
		})
}

// trialSeed derives a distinct deterministic seed for each bench trial.
// A zero base keeps the trial unseeded.
func trialSeed(base uint64, trial int) uint64 {
	if base == 0 {
		return 0
	}
	return base + uint64(trial)
}

func runSession(setting SimulationSetting, dst geometry.DistanceFunc, method, povm string, seed uint64) (float64, error) {
	state, err := qobj.FromBloch(setting.Bloch)
	if err != nil {
		return 0, err
	}
	t := tomo.NewWithMetric(state, dst, app.Conf.LogLevel == "debug")
	if seed != 0 {
		t.Seed(seed)
	}
	if err := t.Experiment(setting.NMeasurements, povm, false); err != nil {
		return 0, err
	}
	for i := 0; i < setting.WarmRounds; i++ {
		if err := t.Experiment(setting.NMeasurements, povm, true); err != nil {
			return 0, err
		}
	}
	estimate, err := t.PointEstimate(method, setting.Physical)
	if err != nil {
		return 0, err
	}
	distance := dst(estimate, state)
	zap.L().Info("tomography session finished",
		zap.String("session", t.ID()),
		zap.String("method", method),
		zap.String("povm", povm),
		zap.Int64("n_measurements", t.NMeasurements()),
		zap.Float64("distance", distance))
	zap.L().Debug(fmt.Sprintf("estimated bloch vector: %v", estimate.Bloch()))

	for _, obs := range setting.Observables {
		val, err := estimation.ExpectationOfSum(estimate, []estimation.Observable{obs})
		if err != nil {
			return 0, err
		}
		zap.L().Info("observable expectation",
			zap.String("pauli", obs.Pauli),
			zap.Float64("value", val),
			zap.Float64("std_err", estimation.StandardError(val, t.NMeasurements())))
	}
	if len(setting.ReadoutErrors) > 0 {
		if err := reportMitigation(state, setting); err != nil {
			return 0, err
		}
	}
	return distance, nil
}

// reportMitigation pushes the true state's computational-basis counts
// through the configured readout noise and back through the
// pseudo-inverse correction, logging the recovery error.
func reportMitigation(state *qobj.Qobj, setting SimulationSetting) error {
	dim := state.Size()
	ideal := make([]float64, dim)
	for i := 0; i < dim; i++ {
		ideal[i] = real(state.At(i, i)) * float64(setting.NMeasurements)
	}
	a, err := mitig.AssignmentMatrix(setting.ReadoutErrors)
	if err != nil {
		return err
	}
	var noisy mat.VecDense
	noisy.MulVec(a, mat.NewVecDense(dim, ideal))
	mitigated, err := mitig.PseudoInverseMitigation(noisy.RawVector().Data, setting.ReadoutErrors)
	if err != nil {
		return err
	}
	var maxDev float64
	for i := range mitigated {
		if d := mitigated[i] - ideal[i]; d > maxDev {
			maxDev = d
		} else if -d > maxDev {
			maxDev = -d
		}
	}
	zap.L().Info("readout mitigation check",
		zap.Float64("max_count_deviation", maxDev))
	return nil
}

type benchCmd struct{}

func newBenchCmd() *benchCmd {
	return &benchCmd{}
}

func (c *benchCmd) Execute(args []string) error {
	logger := setZap(app.Conf)
	defer logger.Sync()

	setting, err := setUpSession()
	if err != nil {
		zap.L().Error(fmt.Sprintf("failed to set up the session. Reason:%s", err))
		return err
	}
	container, err := app.provideDIContainer()
	if err != nil {
		zap.L().Error(fmt.Sprintf("failed to build the DI container. Reason:%s", err))
		return err
	}

	runID := uuid.NewString()
	var g run.Group
	ctx, cancel := context.WithCancel(context.Background())
	g.Add(run.SignalHandler(ctx, os.Interrupt, syscall.SIGTERM))
	g.Add(func() error {
		return container.Invoke(
			func(dst geometry.DistanceFunc, est *estimatorChoice, sch *schemeChoice) error {
				return runTrials(ctx, runID, setting, dst, est.method, sch.povm)
			})
	}, func(error) {
		cancel()
	})
	err = g.Run()
	cancel()
	if _, ok := err.(run.SignalError); ok {
		zap.L().Info("bench interrupted", zap.String("run", runID))
		return nil
	}
	return err
}

func runTrials(ctx context.Context, runID string, setting SimulationSetting,
	dst geometry.DistanceFunc, method, povm string) error {
	distances := make([]float64, 0, setting.Trials)
	for i := 0; i < setting.Trials; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		d, err := runSession(setting, dst, method, povm, trialSeed(app.Conf.Seed, i))
		if err != nil {
			return err
		}
		distances = append(distances, d)
	}
	zap.L().Info("bench finished",
		zap.String("run", runID),
		zap.Int("trials", len(distances)),
		zap.Float64("mean_distance", stat.Mean(distances, nil)),
		zap.Float64("min_distance", floats.Min(distances)),
		zap.Float64("max_distance", floats.Max(distances)))
	return nil
}
