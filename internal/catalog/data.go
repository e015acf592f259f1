// Vitarank - Personalized Supplement Recommendation Engine
// Copyright 2026 Vitarank Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vitarank/vitarank

package catalog

// builtinSupplements is the compiled-in reference catalog. The engine never
// mutates these entries.
var builtinSupplements = []SupplementInfo{
	{
		ID:         "ashwagandha-extract",
		Name:       "Ashwagandha Extract",
		Category:   "calming",
		Benefits:   []string{"Reduces cortisol levels", "Supports stress resilience", "May improve sleep quality"},
		Evidence:   "moderate",
		Vegan:      true,
		GlutenFree: true,
	},
	{
		ID:         "magnesium-glycinate",
		Name:       "Magnesium Glycinate",
		Category:   "calming",
		Benefits:   []string{"Supports muscle relaxation", "Promotes restful sleep", "Aids nervous system function"},
		Evidence:   "strong",
		Vegan:      true,
		GlutenFree: true,
	},
	{
		ID:         "l-theanine",
		Name:       "L-Theanine",
		Category:   "calming",
		Benefits:   []string{"Promotes calm focus", "Reduces stress without drowsiness"},
		Evidence:   "moderate",
		Vegan:      true,
		GlutenFree: true,
	},
	{
		ID:         "melatonin",
		Name:       "Melatonin",
		Category:   "sleep",
		Benefits:   []string{"Regulates sleep-wake cycle", "Reduces time to fall asleep"},
		Evidence:   "strong",
		Vegan:      true,
		GlutenFree: true,
	},
	{
		ID:         "vitamin-b12",
		Name:       "Vitamin B12 (Methylcobalamin)",
		Category:   "energy",
		Benefits:   []string{"Supports energy metabolism", "Aids red blood cell formation", "Supports nerve health"},
		Evidence:   "strong",
		Vegan:      true,
		GlutenFree: true,
	},
	{
		ID:         "iron-bisglycinate",
		Name:       "Iron Bisglycinate",
		Category:   "energy",
		Benefits:   []string{"Supports oxygen transport", "Helps prevent iron-deficiency fatigue"},
		Evidence:   "strong",
		Vegan:      true,
		GlutenFree: true,
	},
	{
		ID:         "coq10-ubiquinol",
		Name:       "CoQ10 (Ubiquinol)",
		Category:   "healthy-aging",
		Benefits:   []string{"Supports cellular energy production", "Antioxidant protection", "Supports heart health"},
		Evidence:   "moderate",
		Vegan:      false,
		GlutenFree: true,
	},
	{
		ID:         "omega-3-fish-oil",
		Name:       "Omega-3 Fish Oil",
		Category:   "cognitive",
		Benefits:   []string{"Supports brain function", "Reduces inflammation", "Supports heart health"},
		Evidence:   "strong",
		Vegan:      false,
		GlutenFree: true,
	},
	{
		ID:         "curcumin-extract",
		Name:       "Curcumin Extract",
		Category:   "joint",
		Benefits:   []string{"Reduces joint inflammation", "Antioxidant support"},
		Evidence:   "moderate",
		Vegan:      true,
		GlutenFree: true,
	},
	{
		ID:         "glucosamine-chondroitin",
		Name:       "Glucosamine & Chondroitin",
		Category:   "joint",
		Benefits:   []string{"Supports joint cartilage", "May reduce joint discomfort"},
		Evidence:   "moderate",
		Vegan:      false,
		GlutenFree: true,
	},
	{
		ID:         "probiotic-blend",
		Name:       "Probiotic Blend",
		Category:   "digestive",
		Benefits:   []string{"Supports gut microbiome balance", "Aids digestion", "Supports immune function"},
		Evidence:   "moderate",
		Vegan:      true,
		GlutenFree: true,
	},
	{
		ID:         "digestive-enzymes",
		Name:       "Digestive Enzymes",
		Category:   "digestive",
		Benefits:   []string{"Aids nutrient breakdown", "Reduces bloating after meals"},
		Evidence:   "limited",
		Vegan:      true,
		GlutenFree: true,
	},
	{
		ID:         "ginger-extract",
		Name:       "Ginger Extract",
		Category:   "digestive",
		Benefits:   []string{"Soothes digestive discomfort", "Reduces nausea"},
		Evidence:   "moderate",
		Vegan:      true,
		GlutenFree: true,
	},
	{
		ID:         "ginkgo-biloba",
		Name:       "Ginkgo Biloba",
		Category:   "cognitive",
		Benefits:   []string{"Supports memory and circulation", "Antioxidant properties"},
		Evidence:   "limited",
		Vegan:      true,
		GlutenFree: true,
	},
	{
		ID:         "lions-mane-mushroom",
		Name:       "Lion's Mane Mushroom",
		Category:   "cognitive",
		Benefits:   []string{"Supports cognitive function", "May support nerve growth"},
		Evidence:   "limited",
		Vegan:      true,
		GlutenFree: true,
	},
	{
		ID:         "vitamin-d3",
		Name:       "Vitamin D3",
		Category:   "immune",
		Benefits:   []string{"Supports bone health", "Supports immune function", "Important in low-sunlight months"},
		Evidence:   "strong",
		Vegan:      false,
		GlutenFree: true,
	},
	{
		ID:         "calcium-citrate",
		Name:       "Calcium Citrate",
		Category:   "healthy-aging",
		Benefits:   []string{"Supports bone density", "Well-absorbed calcium form"},
		Evidence:   "strong",
		Vegan:      true,
		GlutenFree: true,
	},
	{
		ID:         "folate-methyl",
		Name:       "Methylfolate",
		Category:   "energy",
		Benefits:   []string{"Supports cell division", "Important for women of childbearing age"},
		Evidence:   "strong",
		Vegan:      true,
		GlutenFree: true,
	},
	{
		ID:         "creatine-monohydrate",
		Name:       "Creatine Monohydrate",
		Category:   "performance",
		Benefits:   []string{"Supports muscular performance", "May support cognitive energy"},
		Evidence:   "strong",
		Vegan:      true,
		GlutenFree: true,
	},
	{
		ID:         "zinc-picolinate",
		Name:       "Zinc Picolinate",
		Category:   "immune",
		Benefits:   []string{"Supports immune function", "Supports skin health"},
		Evidence:   "strong",
		Vegan:      true,
		GlutenFree: true,
	},
	{
		ID:         "multivitamin-daily",
		Name:       "Daily Multivitamin",
		Category:   "foundational",
		Benefits:   []string{"Covers common micronutrient gaps", "General wellness support"},
		Evidence:   "moderate",
		Vegan:      true,
		GlutenFree: true,
	},
}
