package forecast

// testParams builds a full canonical-stage parameter set with sane defaults,
// then applies the supplied overrides.
func testParams(rates map[Stage]float64, durations map[Stage]DurationDistribution) SimulationParameters {
	params := SimulationParameters{
		ConversionRates: map[Stage]float64{
			StageScreen:   0.6,
			StageHMScreen: 1.0,
			StageOnsite:   0.5,
			StageOffer:    0.8,
		},
		Durations: map[Stage]DurationDistribution{
			StageScreen:   ConstantDuration(5),
			StageHMScreen: ConstantDuration(1),
			StageOnsite:   ConstantDuration(10),
			StageOffer:    ConstantDuration(3),
		},
		SampleSizes: map[string]int{
			StageScreen.RateKey():       20,
			StageScreen.DurationKey():   20,
			StageHMScreen.RateKey():     20,
			StageHMScreen.DurationKey(): 20,
			StageOnsite.RateKey():       20,
			StageOnsite.DurationKey():   20,
			StageOffer.RateKey():        20,
			StageOffer.DurationKey():    20,
		},
	}
	for stage, rate := range rates {
		params.ConversionRates[stage] = rate
	}
	for stage, dist := range durations {
		params.Durations[stage] = dist
	}
	return params
}
