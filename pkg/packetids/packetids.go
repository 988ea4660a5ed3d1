// Package packetids pins the wire packet ids for the single protocol
// version this client targets. Ids are grouped by protocol state and direction;
// S2C is server-to-client (clientbound), C2S the reverse.
package packetids

// ProtocolVersion is the targeted Minecraft Java Edition wire version.
const ProtocolVersion = 774

// Login state, clientbound.
const (
	S2CLoginDisconnectID  = 0x00
	S2CHelloID            = 0x01 // encryption request
	S2CLoginFinishedID    = 0x02
	S2CLoginCompressionID = 0x03
)

// Login state, serverbound.
const (
	C2SHelloID             = 0x00
	C2SKeyID               = 0x01
	C2SLoginAcknowledgedID = 0x03
)

// Configuration state, clientbound.
const (
	S2CCustomPayloadConfigurationID = 0x01
	S2CDisconnectConfigurationID    = 0x02
	S2CFinishConfigurationID        = 0x03
	S2CKeepAliveConfigurationID     = 0x04
	S2CPingConfigurationID          = 0x05
	S2CRegistryDataID               = 0x07
	S2CSelectKnownPacksID           = 0x0E
)

// Configuration state, serverbound.
const (
	C2SClientInformationConfigurationID = 0x00
	C2SCustomPayloadConfigurationID     = 0x02
	C2SFinishConfigurationID            = 0x03
	C2SKeepAliveConfigurationID         = 0x04
	C2SPongConfigurationID              = 0x05
	C2SSelectKnownPacksID               = 0x07
)

// Play state, clientbound.
const (
	S2CBlockUpdateID         = 0x09
	S2CChunkBatchFinishedID  = 0x0C
	S2CDisconnectPlayID      = 0x1D
	S2CExplodeID             = 0x1E
	S2CForgetLevelChunkID    = 0x21
	S2CKeepAlivePlayID       = 0x26
	S2CLevelChunkWithLightID = 0x27
	S2CLoginPlayID           = 0x2B
	S2CPingPlayID            = 0x36
	S2CPlayerPositionID      = 0x40
	S2CRespawnID             = 0x47
	S2CSectionBlocksUpdateID = 0x49
	S2CSetChunkCacheCenterID = 0x54
	S2CStartConfigurationID  = 0x69
)

// Play state, serverbound.
const (
	C2SAcceptTeleportationID        = 0x00
	C2SChunkBatchReceivedID         = 0x09
	C2SConfigurationAcknowledgedID  = 0x0E
	C2SKeepAlivePlayID              = 0x1A
	C2SPongPlayID                   = 0x28
)
