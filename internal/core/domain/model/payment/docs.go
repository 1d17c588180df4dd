// Package payment models a single payment attempt against the gateway.
package payment
