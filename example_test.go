package wink_test

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	wink "github.com/tj-smith47/wink-go"
)

var creds = wink.Credentials{
	ClientID:     "your-client-id",
	ClientSecret: "your-client-secret",
	Username:     "user@example.com",
	Passphrase:   "your-password",
}

func ExampleNewClient() {
	client, err := wink.NewClient(creds)
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	if err := client.Login(ctx, "", ""); err != nil {
		log.Fatal(err)
	}

	devices, err := client.GetDevices(ctx)
	if err != nil {
		log.Fatal(err)
	}

	for _, device := range devices {
		fmt.Printf("Device: %s (%s)\n", device.Name, device.Path)
	}
}

func ExampleNewClient_withOptions() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	client, err := wink.NewClient(creds,
		wink.WithTimeout(10*time.Second),
		wink.WithLogger(wink.NewLogrusLogger(logger)),
		wink.WithMetrics(prometheus.DefaultRegisterer),
	)
	if err != nil {
		log.Fatal(err)
	}

	_ = client
}

func ExampleClient_Devices() {
	client, _ := wink.NewClient(creds)
	ctx := context.Background()

	for device, err := range client.Devices(ctx) {
		if err != nil {
			log.Fatal(err)
		}
		fmt.Printf("%s: %s\n", device.Type, device.Name)
	}
}

func ExampleClient_SetDevice() {
	client, _ := wink.NewClient(creds)
	ctx := context.Background()

	device := &wink.Device{ID: "50417", Type: "light_bulb", Path: "/light_bulbs/50417"}
	data, err := client.SetDevice(ctx, device, map[string]any{
		"desired_state": map[string]any{"powered": true, "brightness": 0.5},
	})
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(data.Text("name"))
}

func ExampleClient_LoginAsync() {
	client, _ := wink.NewClient(creds)

	done := client.LoginAsync(context.Background(), "", "", func(err error) {
		if err != nil {
			log.Printf("login failed: %v", err)
		}
	})
	<-done
}

func ExampleNormalizeDevice() {
	var raw wink.RawObject
	_ = json.Unmarshal([]byte(`{"air_conditioner_id":"1234","name":"Fan"}`), &raw)

	device := wink.NormalizeDevice(raw)
	fmt.Println(device.Type, device.ID, device.Name, device.Path)
	// Output: air_conditioner 1234 Fan /air_conditioners/1234
}

func ExampleUnwrap() {
	resp := &wink.Response{StatusCode: 200, Body: json.RawMessage(`{"data":{},"errors":["bad"]}`)}

	_, err := wink.Unwrap(resp)
	fmt.Println(err)
	// Output: wink: invalid response: ["bad"]
}

func ExampleServiceError() {
	_, err := wink.Unwrap(&wink.Response{Body: json.RawMessage(`{"data":null}`)})

	se := wink.ServiceError(err)
	fmt.Println(se.Category, se.Code, se.TextCode)
	// Output: external 502 WINK_INVALID_RESPONSE
}
