package provider_test

import (
	"context"
	"fmt"
	"log"

	"abapai/model"
	"abapai/provider"
)

// ExampleNewGateway demonstrates selecting a gateway from a config.
func ExampleNewGateway() {
	cfg := model.NewClientConfig(model.ProviderOllama, "", "llama3.1", "http://localhost:11434", model.UnsetTemperature(), 0)

	gw, err := provider.NewGateway(cfg)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("Gateway created: %T\n", gw)
	// Output: Gateway created: *provider.OllamaGateway
}

// ExampleDispatcher_DispatchCompletion shows that a missing API key fails
// before any network call.
func ExampleDispatcher_DispatchCompletion() {
	cfg := model.NewClientConfig(model.ProviderOpenAI, "", "gpt-4o-mini", "", model.UnsetTemperature(), 0)

	d := provider.NewDispatcher()
	result := d.DispatchCompletion(context.Background(), cfg, "Explain this dump")

	fmt.Println(result.IsSuccess())
	fmt.Println(result.Message())
	// Output:
	// false
	// [OpenAI] API key is not configured for OpenAI. Set it with: abapai config set-key openai <key>
}

// ExampleOllamaGateway_TagsURL shows the default model listing endpoint.
func ExampleOllamaGateway_TagsURL() {
	gw, err := provider.NewOllamaGateway(model.NewClientConfig(model.ProviderOllama, "", "", "", model.UnsetTemperature(), 0))
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(gw.TagsURL())
	// Output: http://localhost:11434/api/tags
}
