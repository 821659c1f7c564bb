// SPDX-License-Identifier: MIT

package train

import "fmt"

// Config is the explicit training configuration. Nothing here has a
// hidden global default; reproducing a run means reproducing a Config.
type Config struct {
	// Epochs bounds the loop; early stopping may end it sooner.
	Epochs int

	// LearningRate is the step size of epoch 1.
	LearningRate float64

	// LRDecay is the multiplicative per-epoch factor applied to the
	// learning rate; 1 means a fixed rate.
	LRDecay float64

	// Patience is the number of consecutive epochs without a validation
	// loss improvement tolerated before stopping.
	Patience int

	// ValRatio is the share of labeled nodes held out for validation.
	// With too few labeled nodes to split, validation falls back to the
	// training subset.
	ValRatio float64

	// Seed drives weight initialization and the train/validation split.
	Seed int64

	// Hidden lists the hidden layer widths between the feature input
	// and the class output.
	Hidden []int
}

// DefaultConfig returns the standard training setup.
func DefaultConfig() Config {
	return Config{
		Epochs:       200,
		LearningRate: 0.01,
		LRDecay:      1.0,
		Patience:     20,
		ValRatio:     0.2,
		Seed:         42,
		Hidden:       []int{64, 32},
	}
}

// validate rejects out-of-range configuration with ErrBadConfig.
func (c Config) validate() error {
	if c.Epochs <= 0 {
		return fmt.Errorf("%w: epochs %d", ErrBadConfig, c.Epochs)
	}
	if c.LearningRate <= 0 {
		return fmt.Errorf("%w: learning rate %v", ErrBadConfig, c.LearningRate)
	}
	if c.LRDecay <= 0 || c.LRDecay > 1 {
		return fmt.Errorf("%w: lr decay %v outside (0,1]", ErrBadConfig, c.LRDecay)
	}
	if c.Patience <= 0 {
		return fmt.Errorf("%w: patience %d", ErrBadConfig, c.Patience)
	}
	if c.ValRatio < 0 || c.ValRatio >= 1 {
		return fmt.Errorf("%w: validation ratio %v outside [0,1)", ErrBadConfig, c.ValRatio)
	}
	for _, h := range c.Hidden {
		if h <= 0 {
			return fmt.Errorf("%w: hidden width %d", ErrBadConfig, h)
		}
	}

	return nil
}
