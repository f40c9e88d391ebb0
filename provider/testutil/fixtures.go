package testutil

import (
	"abapai/model"
)

// SampleDump is a trimmed ST22 short dump used across tests.
const SampleDump = `Runtime Errors         COMPUTE_INT_ZERODIVIDE
Except.                CX_SY_ZERODIVIDE
Date and Time          2024-03-14 10:22:31
Short Text
     Division by 0 (type I or INT8)
What happened?
     Error in the ABAP Application Program
     The current ABAP program "ZTEST_DUMP" had to be terminated because it has
     come across a statement that unfortunately cannot be executed.
Source Code Extract
     >>>>>   lv_result = lv_a / lv_b.`

// KeyedConfig returns a config for p with a test API key and default model.
func KeyedConfig(p model.Provider) model.ClientConfig {
	return model.NewClientConfig(p, "test-key", "", "", model.UnsetTemperature(), 0)
}

// UnkeyedConfig returns a config for p with no API key.
func UnkeyedConfig(p model.Provider) model.ClientConfig {
	return model.NewClientConfig(p, "", "", "", model.UnsetTemperature(), 0)
}

// KeyedProviders lists the providers that require an API key.
func KeyedProviders() []model.Provider {
	return []model.Provider{
		model.ProviderGoogleAI,
		model.ProviderOpenAI,
		model.ProviderAnthropic,
	}
}
