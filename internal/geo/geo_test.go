package geo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kelvins/geocoder"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stubLocator() (*GoogleLocator, *int) {
	calls := 0
	l := NewGoogleLocator("test-key")
	l.geocode = func(a geocoder.Address) (geocoder.Location, error) {
		calls++
		if a.PostalCode == "10001" {
			return geocoder.Location{Latitude: 40.75, Longitude: -73.99}, nil
		}
		return geocoder.Location{}, errors.New("ZERO_RESULTS")
	}
	l.reverse = func(loc geocoder.Location) ([]geocoder.Address, error) {
		if loc.Latitude > 0 {
			return []geocoder.Address{
				{City: "New York", Country: "United States"},
				{PostalCode: "10001", City: "New York", Country: "United States"},
			}, nil
		}
		return []geocoder.Address{{City: "Nowhere"}}, nil
	}
	return l, &calls
}

func TestLocate_CachesResults(t *testing.T) {
	l, calls := stubLocator()

	c, err := l.Locate(context.Background(), "10001", "US")
	require.NoError(t, err)
	assert.Equal(t, Coordinates{Latitude: 40.75, Longitude: -73.99}, c)

	_, err = l.Locate(context.Background(), " 10001 ", "us")
	require.NoError(t, err)
	assert.Equal(t, 1, *calls)
}

func TestLocate_Errors(t *testing.T) {
	l, _ := stubLocator()

	_, err := l.Locate(context.Background(), "99999", "US")
	assert.Error(t, err)

	_, err = l.Locate(context.Background(), "", "US")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = NewGoogleLocator("").Locate(context.Background(), "10001", "US")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestReverse(t *testing.T) {
	l, _ := stubLocator()

	p, err := l.Reverse(context.Background(), Coordinates{Latitude: 40.75, Longitude: -73.99})
	require.NoError(t, err)
	assert.Equal(t, Place{PostalCode: "10001", City: "New York", Country: "United States"}, p)

	_, err = l.Reverse(context.Background(), Coordinates{Latitude: -10, Longitude: 20})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = l.Reverse(context.Background(), Coordinates{Latitude: 91})
	assert.ErrorIs(t, err, ErrInvalidCoordinates)
}

func TestCall_HonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	block := make(chan struct{})
	defer close(block)
	_, err := call(ctx, "k", func() (int, error) {
		<-block
		return 1, nil
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCall_HungRequestDoesNotBlockOthers(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	started := make(chan struct{})
	block := make(chan struct{})
	defer close(block)

	errc := make(chan error, 1)
	go func() {
		_, err := call(ctx, "k", func() (int, error) {
			close(started)
			<-block
			return 0, nil
		})
		errc <- err
	}()
	<-started
	cancel()
	assert.ErrorIs(t, <-errc, context.Canceled)

	done := make(chan int, 1)
	go func() {
		v, _ := call(context.Background(), "k", func() (int, error) { return 7, nil })
		done <- v
	}()
	select {
	case v := <-done:
		assert.Equal(t, 7, v)
	case <-time.After(2 * time.Second):
		t.Fatal("second geocoder call waited behind the hung one")
	}
}
