package recipe

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var linkMutations = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "recipebook_ingredient_link_mutations_total",
		Help: "Ingredient link changes made while reconciling recipes, by kind",
	},
	[]string{"kind"},
)
