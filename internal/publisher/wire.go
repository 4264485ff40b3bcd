package publisher

// SensorData is the wire message. Integer keys keep the encoding dense;
// absent fields are omitted rather than sent as zero.
type SensorData struct {
	Time            int64            `cbor:"1,keyasint"`
	PacketID        uint64           `cbor:"2,keyasint"`
	Dynamics        *Dynamics        `cbor:"3,keyasint,omitempty"`
	Controls        *Controls        `cbor:"4,keyasint,omitempty"`
	Pack            *Pack            `cbor:"5,keyasint,omitempty"`
	DiagnosticsHigh *DiagnosticsHigh `cbor:"6,keyasint,omitempty"`
	DiagnosticsLow  *DiagnosticsLow  `cbor:"7,keyasint,omitempty"`
	Thermal         *Thermal         `cbor:"8,keyasint,omitempty"`
}

type Dynamics struct {
	SteerColAngle    *float64  `cbor:"1,keyasint,omitempty"`
	FLSteerAngle     *float64  `cbor:"2,keyasint,omitempty"`
	FRSteerAngle     *float64  `cbor:"3,keyasint,omitempty"`
	FLWSpeed         *float64  `cbor:"4,keyasint,omitempty"`
	FRWSpeed         *float64  `cbor:"5,keyasint,omitempty"`
	BLWSpeed         *float64  `cbor:"6,keyasint,omitempty"`
	BRWSpeed         *float64  `cbor:"7,keyasint,omitempty"`
	FLStrainGaugeV   *float64  `cbor:"8,keyasint,omitempty"`
	FRStrainGaugeV   *float64  `cbor:"9,keyasint,omitempty"`
	BLStrainGaugeV   *float64  `cbor:"10,keyasint,omitempty"`
	BRStrainGaugeV   *float64  `cbor:"11,keyasint,omitempty"`
	FLPushrodStress  *float64  `cbor:"12,keyasint,omitempty"`
	FRPushrodStress  *float64  `cbor:"13,keyasint,omitempty"`
	BLPushrodStress  *float64  `cbor:"14,keyasint,omitempty"`
	BRPushrodStress  *float64  `cbor:"15,keyasint,omitempty"`
	FLSpringDisplace *float64  `cbor:"16,keyasint,omitempty"`
	FRSpringDisplace *float64  `cbor:"17,keyasint,omitempty"`
	BLSpringDisplace *float64  `cbor:"18,keyasint,omitempty"`
	BRSpringDisplace *float64  `cbor:"19,keyasint,omitempty"`
	FLRideHeight     *float64  `cbor:"20,keyasint,omitempty"`
	FRRideHeight     *float64  `cbor:"21,keyasint,omitempty"`
	BLRideHeight     *float64  `cbor:"22,keyasint,omitempty"`
	BRRideHeight     *float64  `cbor:"23,keyasint,omitempty"`
	FLSprungAccel    []float64 `cbor:"24,keyasint,omitempty"`
	FRSprungAccel    []float64 `cbor:"25,keyasint,omitempty"`
	BLSprungAccel    []float64 `cbor:"26,keyasint,omitempty"`
	BRSprungAccel    []float64 `cbor:"27,keyasint,omitempty"`
	FLUnsprungAccel  []float64 `cbor:"28,keyasint,omitempty"`
	FRUnsprungAccel  []float64 `cbor:"29,keyasint,omitempty"`
	BLUnsprungAccel  []float64 `cbor:"30,keyasint,omitempty"`
	BRUnsprungAccel  []float64 `cbor:"31,keyasint,omitempty"`
	FLSprungAngRate  []float64 `cbor:"32,keyasint,omitempty"`
	FRSprungAngRate  []float64 `cbor:"33,keyasint,omitempty"`
	BLSprungAngRate  []float64 `cbor:"34,keyasint,omitempty"`
	BRSprungAngRate  []float64 `cbor:"35,keyasint,omitempty"`
	CentMassAccel    []float64 `cbor:"36,keyasint,omitempty"`
	CentMassAngRate  []float64 `cbor:"37,keyasint,omitempty"`
	FGPS             []float64 `cbor:"38,keyasint,omitempty"`
	FGPSVelocity     *float64  `cbor:"39,keyasint,omitempty"`
	FGPSHeading      *float64  `cbor:"40,keyasint,omitempty"`
	BGPS             []float64 `cbor:"41,keyasint,omitempty"`
	BGPSVelocity     *float64  `cbor:"42,keyasint,omitempty"`
	BGPSHeading      *float64  `cbor:"43,keyasint,omitempty"`
}

type Controls struct {
	APPS1V            *float64 `cbor:"1,keyasint,omitempty"`
	APPS2V            *float64 `cbor:"2,keyasint,omitempty"`
	APPS1T            *float64 `cbor:"3,keyasint,omitempty"`
	APPS2T            *float64 `cbor:"4,keyasint,omitempty"`
	BPPS1V            *float64 `cbor:"5,keyasint,omitempty"`
	BPPS2V            *float64 `cbor:"6,keyasint,omitempty"`
	BPPS1T            *float64 `cbor:"7,keyasint,omitempty"`
	BPPS2T            *float64 `cbor:"8,keyasint,omitempty"`
	BSE1V             *float64 `cbor:"9,keyasint,omitempty"`
	BSE2V             *float64 `cbor:"10,keyasint,omitempty"`
	BSE3V             *float64 `cbor:"11,keyasint,omitempty"`
	BrakePressureF    *float64 `cbor:"12,keyasint,omitempty"`
	BrakePressureRBLL *float64 `cbor:"13,keyasint,omitempty"`
	BrakePressureRALL *float64 `cbor:"14,keyasint,omitempty"`
	BrakeBias         *float64 `cbor:"15,keyasint,omitempty"`
}

type Pack struct {
	HVPackV        *float64 `cbor:"1,keyasint,omitempty"`
	HVTractiveV    *float64 `cbor:"2,keyasint,omitempty"`
	HVC            *float64 `cbor:"3,keyasint,omitempty"`
	HVSOC          *float64 `cbor:"4,keyasint,omitempty"`
	LVV            *float64 `cbor:"5,keyasint,omitempty"`
	LVC            *float64 `cbor:"6,keyasint,omitempty"`
	ContactorState *int64   `cbor:"7,keyasint,omitempty"`
	AvgCellV       *float64 `cbor:"8,keyasint,omitempty"`
	AvgCellTemp    *float64 `cbor:"9,keyasint,omitempty"`
}

type DiagnosticsHigh struct {
	APPS1Disconnect *bool `cbor:"1,keyasint,omitempty"`
	APPS2Disconnect *bool `cbor:"2,keyasint,omitempty"`
	APPS1OutRange   *bool `cbor:"3,keyasint,omitempty"`
	APPS2OutRange   *bool `cbor:"4,keyasint,omitempty"`
	APPSMismatch    *bool `cbor:"5,keyasint,omitempty"`
	APPSImplause    *bool `cbor:"6,keyasint,omitempty"`
	BPPS1Disconnect *bool `cbor:"7,keyasint,omitempty"`
	BPPS2Disconnect *bool `cbor:"8,keyasint,omitempty"`
	BPPS1OutRange   *bool `cbor:"9,keyasint,omitempty"`
	BPPS2OutRange   *bool `cbor:"10,keyasint,omitempty"`
	BPPSMismatch    *bool `cbor:"11,keyasint,omitempty"`
	BSE1Disconnect  *bool `cbor:"12,keyasint,omitempty"`
	BSE2Disconnect  *bool `cbor:"13,keyasint,omitempty"`
	BSE1OutRange    *bool `cbor:"14,keyasint,omitempty"`
	BSE2OutRange    *bool `cbor:"15,keyasint,omitempty"`
}

type DiagnosticsLow struct {
	BMBCommError           *bool     `cbor:"1,keyasint,omitempty"`
	IMDGndIsolationError   *bool     `cbor:"2,keyasint,omitempty"`
	ShutdownLeg1           *bool     `cbor:"3,keyasint,omitempty"`
	ShutdownLeg2           *bool     `cbor:"4,keyasint,omitempty"`
	ShutdownLeg3           *bool     `cbor:"5,keyasint,omitempty"`
	ShutdownLeg4           *bool     `cbor:"6,keyasint,omitempty"`
	BattOverC              *bool     `cbor:"7,keyasint,omitempty"`
	CellOverV              *int64    `cbor:"8,keyasint,omitempty"`
	CellUnderV             *int64    `cbor:"9,keyasint,omitempty"`
	CellOpenWire           *int64    `cbor:"10,keyasint,omitempty"`
	CellDamaged            *int64    `cbor:"11,keyasint,omitempty"`
	ThermistorDamaged      *int64    `cbor:"12,keyasint,omitempty"`
	TractiveContactorError *bool     `cbor:"13,keyasint,omitempty"`
	PrechargeFail          *bool     `cbor:"14,keyasint,omitempty"`
	CellsVBalanced         *bool     `cbor:"15,keyasint,omitempty"`
	CellMinV               *float64  `cbor:"16,keyasint,omitempty"`
	CellMaxV               *float64  `cbor:"17,keyasint,omitempty"`
	BattV                  *float64  `cbor:"18,keyasint,omitempty"`
	BattC                  *float64  `cbor:"19,keyasint,omitempty"`
	CellsV                 []float64 `cbor:"20,keyasint,omitempty"`
}

type Thermal struct {
	MotorLoopFlowRate     *float64  `cbor:"1,keyasint,omitempty"`
	MotorLoopMotorTemp    *float64  `cbor:"2,keyasint,omitempty"`
	MotorLoopInverterTemp *float64  `cbor:"3,keyasint,omitempty"`
	MotorLoopRadTemp      *float64  `cbor:"4,keyasint,omitempty"`
	MotorLoopRadFanSpeed  *float64  `cbor:"5,keyasint,omitempty"`
	BattLoopBattTemp      *float64  `cbor:"6,keyasint,omitempty"`
	BattLoopRadTemp       *float64  `cbor:"7,keyasint,omitempty"`
	BattLoopRadFanSpeed   *float64  `cbor:"8,keyasint,omitempty"`
	InverterTemp          *float64  `cbor:"9,keyasint,omitempty"`
	MotorTemp             *float64  `cbor:"10,keyasint,omitempty"`
	AmbientTemp           *float64  `cbor:"11,keyasint,omitempty"`
	DischargeRTemp        *float64  `cbor:"12,keyasint,omitempty"`
	BusBarTemp1           *float64  `cbor:"13,keyasint,omitempty"`
	BusBarTemp2           *float64  `cbor:"14,keyasint,omitempty"`
	BusBarTemp3           *float64  `cbor:"15,keyasint,omitempty"`
	PrechargeRTemp        *float64  `cbor:"16,keyasint,omitempty"`
	BattOverTemp          *bool     `cbor:"17,keyasint,omitempty"`
	CellsTemp             []float64 `cbor:"18,keyasint,omitempty"`
}
