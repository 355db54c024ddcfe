package forecasting

import (
	"math/rand/v2"
)

func newRand(seed int64) *rand.Rand {
	return rand.New(rand.NewPCG(uint64(seed), 0x9e3779b97f4a7c15))
}

// randomForest averages trees grown on bootstrap samples
type randomForest struct {
	trees []*regressionTree
}

func fitRandomForest(X [][]float64, y []float64, cfg RandomForestConfig) *randomForest {
	rng := newRand(cfg.RandomState)
	params := treeParams{
		maxDepth:        cfg.MaxDepth,
		minSamplesSplit: cfg.MinSamplesSplit,
		minSamplesLeaf:  cfg.MinSamplesLeaf,
	}

	n := len(y)
	forest := &randomForest{trees: make([]*regressionTree, 0, cfg.NEstimators)}
	for t := 0; t < cfg.NEstimators; t++ {
		sample := make([]int, n)
		for i := range sample {
			sample[i] = rng.IntN(n)
		}
		forest.trees = append(forest.trees, fitRegressionTree(X, y, sample, params))
	}
	return forest
}

func (f *randomForest) predict(x []float64) float64 {
	if len(f.trees) == 0 {
		return 0
	}
	var sum float64
	for _, t := range f.trees {
		sum += t.predict(x)
	}
	return sum / float64(len(f.trees))
}

// gradientBoosting fits shallow trees to squared-error residuals
type gradientBoosting struct {
	init         float64
	learningRate float64
	trees        []*regressionTree
}

func fitGradientBoosting(X [][]float64, y []float64, cfg GradientBoostingConfig) *gradientBoosting {
	rng := newRand(cfg.RandomState)
	params := treeParams{
		maxDepth:        cfg.MaxDepth,
		minSamplesSplit: cfg.MinSamplesSplit,
		minSamplesLeaf:  1,
	}

	n := len(y)
	all := make([]int, n)
	for i := range all {
		all[i] = i
	}

	gb := &gradientBoosting{
		init:         meanAt(y, all),
		learningRate: cfg.LearningRate,
		trees:        make([]*regressionTree, 0, cfg.NEstimators),
	}

	current := make([]float64, n)
	for i := range current {
		current[i] = gb.init
	}
	residuals := make([]float64, n)

	sampleSize := int(cfg.Subsample * float64(n))
	if sampleSize < 1 {
		sampleSize = 1
	}

	for m := 0; m < cfg.NEstimators; m++ {
		for i := range residuals {
			residuals[i] = y[i] - current[i]
		}

		sample := all
		if sampleSize < n {
			sample = rng.Perm(n)[:sampleSize]
		}

		tree := fitRegressionTree(X, residuals, sample, params)
		gb.trees = append(gb.trees, tree)
		for i := range current {
			current[i] += gb.learningRate * tree.predict(X[i])
		}
	}
	return gb
}

func (g *gradientBoosting) predict(x []float64) float64 {
	pred := g.init
	for _, t := range g.trees {
		pred += g.learningRate * t.predict(x)
	}
	return pred
}
