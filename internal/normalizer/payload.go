package normalizer

type productionBlock struct {
	OK     flexNumber `json:"ok"`
	NOK    flexNumber `json:"nok"`
	Rework flexNumber `json:"rework"`
}

type flatPayload struct {
	MachineCode      flexString `json:"machineCode"`
	MachineName      flexString `json:"machineName"`
	Status           flexString `json:"status"`
	OrderCode        flexString `json:"orderCode"`
	OrderDescription flexString `json:"orderDescription"`
	Operator         flexString `json:"operator"`
	Shift            flexString `json:"shift"`

	OK     flexNumber `json:"ok"`
	NOK    flexNumber `json:"nok"`
	Rework flexNumber `json:"rework"`

	OrderOK     flexNumber `json:"orderOk"`
	OrderNOK    flexNumber `json:"orderNok"`
	OrderRework flexNumber `json:"orderRework"`

	Velocity        flexNumber `json:"velocity"`
	NominalVelocity flexNumber `json:"nominalVelocity"`

	ProductiveSeconds flexNumber `json:"productiveSeconds"`
	DowntimeSeconds   flexNumber `json:"downtimeSeconds"`
}

type nestedPayload struct {
	Info struct {
		Code        flexString `json:"code"`
		MachineCode flexString `json:"machineCode"`
		Name        flexString `json:"name"`
		Status      flexString `json:"status"`
		Operator    flexString `json:"operator"`
		Shift       flexString `json:"shift"`
	} `json:"info"`

	Order struct {
		Code        flexString      `json:"code"`
		Description flexString      `json:"description"`
		Production  productionBlock `json:"production"`
	} `json:"order"`

	Shift struct {
		Production        productionBlock `json:"production"`
		ProductiveSeconds flexNumber      `json:"productiveSeconds"`
		DowntimeSeconds   flexNumber      `json:"downtimeSeconds"`
	} `json:"shift"`

	Velocity struct {
		Current flexNumber `json:"current"`
		Nominal flexNumber `json:"nominal"`
	} `json:"velocity"`
}
