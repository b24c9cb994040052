package components

import (
	"context"
	"fmt"
	"strings"

	"github.com/genesis-core/go-genesis/pkg/component"
)

// Weather serves canned conditions for a handful of cities. It stands in for
// a real forecast provider.
type Weather struct{}

func NewWeather() component.Component { return &Weather{} }

var weatherData = map[string]string{
	"london":   "Partly cloudy, 15°C",
	"paris":    "Sunny, 20°C",
	"new york": "Cloudy, 10°C, chance of rain",
	"tokyo":    "Clear, 25°C",
	"mumbai":   "Humid, 30°C, light breeze",
}

func (w *Weather) Descriptor() component.Descriptor {
	return component.Descriptor{
		Name:        "weather",
		Description: "Gets the current weather for a requested city.",
		Params: []component.Param{
			{
				Name:        "city",
				Type:        component.TypeString,
				Description: "The name of the city.",
				Required:    true,
			},
		},
	}
}

func (w *Weather) Init(context.Context) error     { return nil }
func (w *Weather) Shutdown(context.Context) error { return nil }

func (w *Weather) Invoke(_ context.Context, args map[string]any) (component.Result, error) {
	city := fmt.Sprint(args["city"])
	conditions, ok := weatherData[strings.ToLower(strings.TrimSpace(city))]
	if !ok {
		conditions = "Weather data not available for this city."
	}
	return component.Result{Content: fmt.Sprintf("Current weather in %s: %s", city, conditions)}, nil
}
