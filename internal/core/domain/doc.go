// Package domain contains the core types of the retrieval-augmented
// answering pipeline.
//
// The domain layer has no dependencies outside the standard library. It
// defines what flows through ingestion (source documents, chunks, indexed
// records, ingest reports) and through answering (messages, conversation
// history, retrieved records, sampling parameters), together with the
// settings that configure both.
//
// # Architectural Position
//
// Domain sits at the centre of the hexagon:
//
//	┌──────────────────────────────────────────┐
//	│                Adapters                   │
//	│  ┌────────────────────────────────────┐   │
//	│  │               Ports                 │   │
//	│  │  ┌──────────────────────────────┐   │   │
//	│  │  │           Domain              │   │   │
//	│  │  └──────────────────────────────┘   │   │
//	│  └────────────────────────────────────┘   │
//	└──────────────────────────────────────────┘
//
// # Import Rules
//
// Domain may import only the standard library. Ports, services and
// adapters import domain, never the other way round.
package domain
