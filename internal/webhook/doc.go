// Package webhook implements the inbound Twilio WhatsApp callback
// endpoint with signature verification and auto-reply dispatch.
//
// # Security Model
//
// - Every callback is verified against X-Twilio-Signature before any
//   message record is built: the canonical string (public URL + sorted
//   form parameters) is HMAC-SHA1 signed with the account auth token and
//   compared in constant time (crypto/hmac).
// - Verification failures get a generic 401 with no detail about which
//   part of the signature mismatched, and the auto-reply policy is never
//   invoked for them.
// - Body size limits are enforced before parsing.
// - The /events feed is guarded by a bearer key compared in constant
//   time (crypto/subtle) and carries no message bodies.
//
// # Request Flow
//
//  1. HTTP POST arrives at the configured path
//  2. Body size checked (reject with 413 if too large)
//  3. Form fields parsed, signature header extracted
//  4. Signature verified against the configured public URL (reject with
//     401 on mismatch; terminal, no retry here)
//  5. InboundMessage built from the field map; missing optional fields
//     stay empty, never an error
//  6. Auto-reply policy invoked synchronously when configured; a
//     non-empty reply is sent back to the sender (channel prefix
//     stripped) through the message sender
//  7. 200 returned after the reply attempt completes. Reply-send
//     failures are logged and published on the event feed but never
//     propagated: a non-2xx here would make the provider re-deliver the
//     inbound event, not the reply.
//
// The reply send is awaited, not fired-and-forgotten; that is a fixed
// policy of this server, not a per-request choice.
//
// Handlers share only the read-only config, the credential-holding
// sender, and the policy reference, so concurrent callbacks need no
// coordination.
package webhook
