// Package assoc joins and leaves a PAN.
//
// Associate tunes to the PAN's channel, sends an association request that
// requests an ACK, waits for the ACK and then for the coordinator's
// association response. Disassociate notifies the coordinator and always
// clears local membership, whether or not the notification was
// acknowledged. Neither operation retries; that is left to the caller.
package assoc
