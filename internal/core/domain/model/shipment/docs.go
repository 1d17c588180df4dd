// Package shipment models the single carrier shipment of an order and the
// snapshot of data handed to the carrier when creating it.
package shipment
